// Package opsview writes hosts to an Opsview monitoring instance.
//
// It is the target side of the sync: a REST client speaking Opsview's
// config API, an adapter implementing the reconciler's Target interface,
// and the operator-initiated purge.
//
// # Sessions
//
// The API is token-based: Login exchanges credentials for a token that
// every later request carries in the X-Opsview-Username and
// X-Opsview-Token headers, and Logout invalidates it. Config reads
// paginate with ?page=N until the page equals the reported total.
//
// # Ownership marks
//
// Every host the sync manages carries SERVICENOW_SYS_ID and
// SERVICENOW_INSTANCE host attributes, and every hashtag it creates
// carries a fixed description prefix. The adapter scopes itself to one
// instance through these marks; purge uses them to find what to remove.
//
// # Change application
//
// Config writes stage changes; nothing monitors differently until a
// reload applies them. The adapter surfaces the pending-changes status
// so the runner can refuse to sweep up someone else's staged work.
package opsview
