package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mobilekit/auth-service/internal/api/metrics"
	"github.com/mobilekit/auth-service/internal/core/domain"
	"github.com/mobilekit/auth-service/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditRecorder writing to the given repository.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditRecorder {
	return &auditService{repo: repo, log: log}
}

// Record persists a single auth event.
func (s *auditService) Record(ctx context.Context, event domain.AuthEvent) error {
	if err := s.repo.Insert(ctx, &event); err != nil {
		metrics.AuditEventsErrorsTotal.WithLabelValues("insert_failed").Inc()
		return fmt.Errorf("record auth event: %w", err)
	}

	metrics.AuditEventsRecordedTotal.WithLabelValues(string(event.Action)).Inc()
	s.log.Debug().
		Str("user_id", event.UserID).
		Str("action", string(event.Action)).
		Msg("auth event recorded")
	return nil
}
