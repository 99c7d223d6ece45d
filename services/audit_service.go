package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// AuditService appends immutable audit rows. Log is always called with the
// transaction of the change being recorded so the row commits with it.
type AuditService struct {
	repo   repositories.AuditRepository
	logger *slog.Logger
}

func NewAuditService(repo repositories.AuditRepository, logger *slog.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

func (s *AuditService) Log(ctx context.Context, exec repositories.SQLExecutor, rc *models.RequestContext, action, entityType string, entityID *int, details map[string]interface{}) error {
	entry := &models.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    "{}",
	}
	if rc != nil {
		entry.ActorUserID = rc.ActorID()
		if rc.IPAddress != "" {
			ip := rc.IPAddress
			entry.IPAddress = &ip
		}
		if rc.UserAgent != "" {
			ua := rc.UserAgent
			entry.UserAgent = &ua
		}
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			s.logger.Warn("failed to marshal audit details", "action", action, "error", err)
		} else {
			entry.Details = string(raw)
		}
	}
	return s.repo.Create(ctx, exec, entry)
}

func (s *AuditService) List(ctx context.Context, limit int, action *string, actorUserID *int) ([]*models.AuditLog, error) {
	return s.repo.List(ctx, limit, action, actorUserID)
}
