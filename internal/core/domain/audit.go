package domain

import "time"

// Audit actions recorded by the background trail.
const (
	AuditRegistered  = "user.registered"
	AuditLogin       = "user.login"
	AuditLoginFailed = "user.login_failed"
	AuditUpdated     = "user.updated"
	AuditDeleted     = "user.deleted"
)

// AuditEvent is an append-only record of a security-relevant action.
// ActorID is the authenticated caller (0 for anonymous flows like login),
// SubjectID the account acted upon.
type AuditEvent struct {
	Action    string
	ActorID   int64
	SubjectID int64
	Email     string
	At        time.Time
}
