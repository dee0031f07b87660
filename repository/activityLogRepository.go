package repository

import (
	"context"
	"internhub/models"
	"time"

	"gorm.io/gorm"
)

// ActivityLogRepository stores the audit trail.
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ActivityFilter narrows an activity log listing. Zero values are ignored.
type ActivityFilter struct {
	ActorID    *uint
	Action     string
	EntityType string
	EntityID   *uint
	From       *time.Time
	To         *time.Time
}

func (f ActivityFilter) scopes() []Scope {
	var scopes []Scope
	where := func(query string, arg interface{}) {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Where(query, arg) })
	}
	if f.ActorID != nil {
		where("actor_id = ?", *f.ActorID)
	}
	if f.Action != "" {
		where("action = ?", f.Action)
	}
	if f.EntityType != "" {
		where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != nil {
		where("entity_id = ?", *f.EntityID)
	}
	if f.From != nil {
		where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		where("created_at <= ?", *f.To)
	}
	return scopes
}

// ActivityPage is one page of activity, newest first.
type ActivityPage struct {
	Items      []models.ActivityLog `json:"items"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"totalPages"`
}

// List ignores the sort fields of p; activity is always newest first.
func (r *ActivityLogRepository) List(ctx context.Context, f ActivityFilter, p PageRequest) (*ActivityPage, error) {
	p = p.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Scopes(f.scopes()...).Count(&total).Error; err != nil {
		return nil, err
	}

	logs := []models.ActivityLog{}
	if err := r.db.WithContext(ctx).
		Scopes(f.scopes()...).
		Order("created_at DESC").
		Order("id DESC").
		Offset(p.offset()).
		Limit(p.Limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}

	return &ActivityPage{
		Items:      logs,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: int((total + int64(p.Limit) - 1) / int64(p.Limit)),
	}, nil
}
