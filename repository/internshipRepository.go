package repository

import (
	"context"
	"errors"
	"fmt"
	"internhub/models"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InternshipRepository persists internships with GORM.
type InternshipRepository struct {
	db *gorm.DB
}

func NewInternshipRepository(db *gorm.DB) *InternshipRepository {
	return &InternshipRepository{db: db}
}

func (r *InternshipRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Internship{}).
		Preload("Sector").
		Preload("Student").
		Preload("Instructor")
}

// FindByID loads one internship with its sector, student and instructor.
func (r *InternshipRepository) FindByID(ctx context.Context, id uint) (*models.Internship, error) {
	var internship models.Internship
	err := r.withRelations(ctx).Where("internships.id = ?", id).First(&internship).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: Internship not found: %d", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &internship, nil
}

func (r *InternshipRepository) Create(ctx context.Context, internship *models.Internship) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(internship).Error
}

// Save writes a transition of a loaded internship. The UPDATE is conditioned
// on the status it was loaded with, and instructor_id is only written when the
// transition changed it, so a claim that landed after the load survives.
// A row whose status moved meanwhile gives ErrNotModifiable.
func (r *InternshipRepository) Save(ctx context.Context, internship *models.Internship) error {
	omit := []string{clause.Associations, "id", "created_at", "student_id"}
	if !internship.InstructorChanged() {
		omit = append(omit, "instructor_id")
	}
	tx := r.db.WithContext(ctx).Model(internship)
	if status, ok := internship.PersistedStatus(); ok {
		tx = tx.Where("status = ?", status)
	}
	res := tx.Select("*").Omit(omit...).Updates(internship)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.staleSave(ctx, internship.ID)
	}
	internship.MarkPersisted()
	return nil
}

// staleSave tells a deleted row from one whose status changed under us.
func (r *InternshipRepository) staleSave(ctx context.Context, id uint) error {
	var current models.Internship
	err := r.db.WithContext(ctx).Select("id", "status").First(&current, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: Internship not found: %d", models.ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: Internship %d was changed to %s by someone else", models.ErrNotModifiable, id, current.Status)
}

func (r *InternshipRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Internship{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: Internship not found: %d", models.ErrNotFound, id)
	}
	return nil
}

// ClaimIfUnassigned sets the instructor in a single conditional UPDATE keyed on
// (id, PENDING_VALIDATION, instructor_id IS NULL). Exactly one of several
// concurrent callers gets true.
func (r *InternshipRepository) ClaimIfUnassigned(ctx context.Context, id, instructorID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Internship{}).
		Where("id = ? AND status = ? AND instructor_id IS NULL", id, models.StatusPendingValidation).
		Updates(map[string]interface{}{
			"instructor_id": instructorID,
			"updated_at":    at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Search returns every internship matching c, newest first.
func (r *InternshipRepository) Search(ctx context.Context, c SearchCriteria) ([]models.Internship, error) {
	var internships []models.Internship
	err := r.withRelations(ctx).
		Scopes(c.Scopes()...).
		Order("internships.created_at DESC").
		Order("internships.id DESC").
		Find(&internships).Error
	return internships, err
}

// SearchPage applies the same predicate as Search to one sorted page.
func (r *InternshipRepository) SearchPage(ctx context.Context, c SearchCriteria, p PageRequest) (*Page, error) {
	p = p.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Internship{}).Scopes(c.Scopes()...).Count(&total).Error; err != nil {
		return nil, err
	}

	internships := []models.Internship{}
	if err := r.withRelations(ctx).
		Scopes(c.Scopes()...).
		Order(p.order()).
		Order("internships.id").
		Offset(p.offset()).
		Limit(p.Limit).
		Find(&internships).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return &Page{
		Items:      internships,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}, nil
}
