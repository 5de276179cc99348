// Package attributes parses the free-text attributes field carried by
// CMDB configuration items into structured sync directives.
//
// # Format
//
// An attributes string is a ';'-separated list of Name=Value clauses:
//
//	OpsviewCollectorCluster=Cluster-01;OpsviewHashtags=lab,snow;OpsviewHostTemplates="OS - Unix Base"
//
// List-valued directives split their value on ','. An element is either a
// bare token or a double-quoted string; quoting allows ',' and ';' inside
// an element and the quotes themselves are stripped. There are no escape
// sequences.
//
// # Error handling
//
// Malformed clauses never fail the whole string. Each bad clause is
// reported as a Warning and skipped, so one broken directive cannot hide
// the rest of a host's configuration. Directive names that the pipeline
// does not recognize are preserved untouched.
package attributes
