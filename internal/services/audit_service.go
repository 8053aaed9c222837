package services

import (
	"context"
	"fmt"

	"github.com/sjperalta/bailbooks-api/internal/models"
	"github.com/sjperalta/bailbooks-api/internal/repository"
	"github.com/sjperalta/bailbooks-api/pkg/logger"
)

// Actor identifies who triggered a change. ID 0 is the system.
type Actor struct {
	ID        uint
	IP        string
	UserAgent string
}

// SystemActor is used by background jobs.
var SystemActor = Actor{}

type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log records an audit entry. Failures are logged and returned; callers treat the
// audit trail as best effort.
func (s *AuditService) Log(ctx context.Context, actor Actor, action, entity string, entityID uint, details string) error {
	if s == nil || s.repo == nil {
		return nil
	}
	entry := &models.AuditLog{
		ActorID:   actor.ID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Warn("audit log write failed",
			"action", action, "entity", entity, "entity_id", entityID, logger.Err(err))
		return fmt.Errorf("audit %s %s %d: %w", action, entity, entityID, err)
	}
	return nil
}

// List retrieves audit logs with filters
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, query)
}
