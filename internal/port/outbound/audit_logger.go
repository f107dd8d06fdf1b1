package outbound

import "context"

// AuditEntry describes one data mutation.
type AuditEntry struct {
	IP     string
	Action string
	Table  string
	// Data is a slice of affected records, a single record or nil.
	Data any
}

// AuditLogger records mutations on a best-effort basis. Implementations must never
// fail the caller; problems are only logged.
type AuditLogger interface {
	LogMutation(ctx context.Context, entry AuditEntry)
}
