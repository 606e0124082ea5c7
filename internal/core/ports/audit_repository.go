package ports

import (
	"context"

	"github.com/userhub/identity-api/internal/core/domain"
)

// AuditRepository persists audit trail entries.
type AuditRepository interface {
	Insert(ctx context.Context, event domain.AuditEvent) error
}

// AuditRecorder accepts audit events for asynchronous persistence. Record
// must not block the request path and must never fail it.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}
