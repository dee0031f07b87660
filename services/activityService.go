package services

import (
	"context"
	"encoding/json"
	"internhub/models"
	"internhub/repository"

	"gorm.io/datatypes"
)

// ActivityStore persists audit entries.
type ActivityStore interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, f repository.ActivityFilter, p repository.PageRequest) (*repository.ActivityPage, error)
}

// ActivityService is the database-backed AuditLogger and its admin view.
type ActivityService struct {
	logs ActivityStore
}

func NewActivityService(logs ActivityStore) *ActivityService {
	return &ActivityService{logs: logs}
}

func (s *ActivityService) Record(ctx context.Context, e AuditEntry) error {
	entry := &models.ActivityLog{
		ActorID:     e.ActorID,
		ActorRole:   string(e.ActorRole),
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Description: e.Description,
	}
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		entry.Metadata = datatypes.JSON(raw)
	}
	return s.logs.Create(ctx, entry)
}

// List returns the activity log to administrators.
func (s *ActivityService) List(ctx context.Context, actor Actor, f repository.ActivityFilter, p repository.PageRequest) (*repository.ActivityPage, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.logs.List(ctx, f, p)
}
