// Package servicenow reads configuration items from a ServiceNow instance.
//
// It is the CMDB side of the sync: a thin Table API client plus an adapter
// implementing the reconciler's Source interface.
//
// # Scope
//
// Only cmdb_ci records whose free-text attributes field mentions the
// collector cluster directive are fetched (sysparm_query with LIKE). The
// fetch paginates with sysparm_offset/sysparm_limit and stops on the first
// short page.
//
// # Components
//
//   - Client: authenticated Table API access with pagination.
//   - Source: maps Table API records to the reconciler's RawCI.
package servicenow
