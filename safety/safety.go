// Package safety is the lexical pre-execution filter for agent-authored SQL.
// It blocks statement categories that are obviously dangerous in a shared
// database: destructive schema changes, unscoped deletes, cross-database
// access, engine configuration, and multi-statement batches.
//
// The checks are prefix/substring matches over the trimmed, case-folded
// statement. There is no SQL parsing, so a crafted statement can slip past a
// rule (DELETE ... WHERE 1=1, a comment before DROP). That is a documented
// limitation: the gate is a best-effort filter, not an authorization system.
package safety

import "strings"

// UnsafeStatementError reports a statement blocked before execution.
type UnsafeStatementError struct {
	Reason string
}

func (e *UnsafeStatementError) Error() string {
	return "unsafe statement: " + e.Reason
}

// Check validates a single SQL statement against the blocklist. Rules are
// evaluated in order and the first match wins; statements matching no rule
// pass through verbatim.
func Check(statement string) error {
	stmt := strings.ToLower(strings.TrimSpace(statement))

	if strings.HasPrefix(stmt, "drop") {
		return &UnsafeStatementError{Reason: "DROP statements are disabled (destructive schema change)"}
	}
	if strings.HasPrefix(stmt, "delete") && !hasWhereToken(stmt) {
		return &UnsafeStatementError{Reason: "DELETE without WHERE is disabled (unscoped deletion)"}
	}
	if strings.HasPrefix(stmt, "attach") {
		return &UnsafeStatementError{Reason: "ATTACH is disabled (cross-database access)"}
	}
	if strings.Contains(stmt, "pragma") {
		return &UnsafeStatementError{Reason: "PRAGMA is disabled (engine introspection/config bypass)"}
	}
	if strings.Count(stmt, ";") > 1 {
		return &UnsafeStatementError{Reason: "multi-statement batches are disabled"}
	}

	return nil
}

func hasWhereToken(stmt string) bool {
	for _, tok := range strings.Fields(stmt) {
		if tok == "where" {
			return true
		}
	}
	return false
}
