package services

import (
	"context"
	"fmt"
	"internhub/models"
	"log"
	"strings"
)

// SectorService administers sectors and instructor assignments.
type SectorService struct {
	sectors SectorStore
	users   UserStore
	audit   AuditLogger
}

func NewSectorService(sectors SectorStore, users UserStore, audit AuditLogger) *SectorService {
	if audit == nil {
		audit = logAuditLogger{}
	}
	return &SectorService{sectors: sectors, users: users, audit: audit}
}

func (s *SectorService) List(ctx context.Context) ([]models.Sector, error) {
	return s.sectors.FindAll(ctx)
}

func (s *SectorService) Create(ctx context.Context, actor Actor, name, description string) (*models.Sector, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: sector name is required", models.ErrValidation)
	}
	sector := &models.Sector{Name: name, Description: description}
	if err := s.sectors.Create(ctx, sector); err != nil {
		return nil, err
	}
	s.recordAction(ctx, actor, models.ActionSectorCreate, models.EntitySector, sector.ID, fmt.Sprintf("Sector %q created", sector.Name))
	return sector, nil
}

// AssignToInstructor replaces the instructor's sector set.
func (s *SectorService) AssignToInstructor(ctx context.Context, actor Actor, instructorID uint, sectorIDs []uint) (*models.User, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleInstructor {
		return nil, fmt.Errorf("%w: User is not an instructor", models.ErrValidation)
	}
	if err := s.sectors.ReplaceInstructorSectors(ctx, user, sectorIDs); err != nil {
		return nil, err
	}
	s.recordAction(ctx, actor, models.ActionSectorAssign, models.EntityUser, user.ID,
		fmt.Sprintf("Instructor %d assigned to sectors %v", user.ID, user.SectorIDs()))
	return user, nil
}

func (s *SectorService) recordAction(ctx context.Context, actor Actor, action, entityType string, entityID uint, description string) {
	err := s.audit.Record(ctx, AuditEntry{
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
	})
	if err != nil {
		log.Printf("[SECTOR] audit %s failed: %v", action, err)
	}
}
