package core

import "time"

const (
	AuditActionLogin  = "auth.login"
	AuditActionDenied = "auth.denied"
)

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "auth.login", "auth.denied")
	Action string `json:"action"`

	// Username is the principal the request claimed or resolved to, if any
	Username string `json:"username,omitempty"`

	// Method and Path of the request that produced the entry
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"`

	// Decision details
	Granted bool   `json:"granted"`
	Status  int    `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`

	// TokenFingerprint identifies an issued token without storing it
	TokenFingerprint string `json:"token_fingerprint,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}

// AuditReader is implemented by auditors that keep entries queryable.
type AuditReader interface {
	GetRecent(limit int) ([]AuditEntry, error)
	Find(filter func(entry AuditEntry) bool, limit int) ([]AuditEntry, error)
}
