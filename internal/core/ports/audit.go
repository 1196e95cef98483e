package ports

import (
	"context"

	"github.com/mobilekit/auth-service/internal/core/domain"
)

// AuditRecorder persists auth events produced by the dispatcher workers.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AuthEvent) error
}

// AuditRepository is the persistence contract for the audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
	ListByUser(ctx context.Context, userID string, limit int64) ([]domain.AuthEvent, error)
}
