package repository

import (
	"context"
	"errors"
	"fmt"
	"internhub/models"

	"gorm.io/gorm"
)

// UserRepository reads accounts and their sector assignments.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID loads an active user with assigned sectors.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Sectors").
		Where("id = ? AND is_deleted = false", id).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: User not found: %d", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindInstructorsBySector lists active instructors assigned to sectorID.
func (r *UserRepository) FindInstructorsBySector(ctx context.Context, sectorID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN instructor_sectors ON instructor_sectors.user_id = users.id").
		Where("instructor_sectors.sector_id = ? AND users.role = ? AND users.is_deleted = false", sectorID, models.RoleInstructor).
		Find(&users).Error
	return users, err
}

// FindByEmail matches case-insensitively and skips deleted accounts.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND is_deleted = false", email).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: User not found: %s", models.ErrNotFound, email)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// SectorRepository manages sectors and the instructor_sectors join table.
type SectorRepository struct {
	db *gorm.DB
}

func NewSectorRepository(db *gorm.DB) *SectorRepository {
	return &SectorRepository{db: db}
}

func (r *SectorRepository) FindByID(ctx context.Context, id uint) (*models.Sector, error) {
	var sector models.Sector
	err := r.db.WithContext(ctx).First(&sector, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: Sector not found: %d", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &sector, nil
}

func (r *SectorRepository) FindAll(ctx context.Context) ([]models.Sector, error) {
	var sectors []models.Sector
	err := r.db.WithContext(ctx).Order("name ASC").Find(&sectors).Error
	return sectors, err
}

// Create rejects duplicate names with ErrValidation.
func (r *SectorRepository) Create(ctx context.Context, sector *models.Sector) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Sector{}).Where("LOWER(name) = LOWER(?)", sector.Name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: Sector with name '%s' already exists", models.ErrValidation, sector.Name)
	}
	return r.db.WithContext(ctx).Create(sector).Error
}

// ReplaceInstructorSectors sets the instructor's sector set to exactly
// sectorIDs in one transaction.
func (r *SectorRepository) ReplaceInstructorSectors(ctx context.Context, user *models.User, sectorIDs []uint) error {
	sectors := []models.Sector{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(sectorIDs) > 0 {
			if err := tx.Where("id IN ?", sectorIDs).Find(&sectors).Error; err != nil {
				return err
			}
			if len(sectors) != len(uniqueIDs(sectorIDs)) {
				return fmt.Errorf("%w: one or more sectors do not exist", models.ErrNotFound)
			}
		}
		return tx.Model(user).Association("Sectors").Replace(sectors)
	})
	if err != nil {
		return err
	}
	user.Sectors = sectors
	return nil
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
