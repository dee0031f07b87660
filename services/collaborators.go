package services

import (
	"context"
	"errors"
	"internhub/models"
	"internhub/repository"
	"log"
	"time"
)

// Actor is the resolved identity behind a call.
type Actor struct {
	ID        uint
	Role      models.Role
	SectorIDs []uint
}

// SystemActor performs scheduled transitions.
var SystemActor = Actor{ID: 0, Role: models.RoleAdmin}

func (a Actor) IsAdmin() bool      { return a.Role == models.RoleAdmin }
func (a Actor) IsInstructor() bool { return a.Role == models.RoleInstructor }
func (a Actor) IsStudent() bool    { return a.Role == models.RoleStudent }

// CoversSector reports whether sectorID is in the actor's assigned sectors.
func (a Actor) CoversSector(sectorID uint) bool {
	for _, id := range a.SectorIDs {
		if id == sectorID {
			return true
		}
	}
	return false
}

// InternshipStore is the persistence the engine needs.
type InternshipStore interface {
	FindByID(ctx context.Context, id uint) (*models.Internship, error)
	Create(ctx context.Context, internship *models.Internship) error
	Save(ctx context.Context, internship *models.Internship) error
	Delete(ctx context.Context, id uint) error
	ClaimIfUnassigned(ctx context.Context, id, instructorID uint, at time.Time) (bool, error)
	Search(ctx context.Context, c repository.SearchCriteria) ([]models.Internship, error)
	SearchPage(ctx context.Context, c repository.SearchCriteria, p repository.PageRequest) (*repository.Page, error)
}

// UserStore resolves identities and instructors.
type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindInstructorsBySector(ctx context.Context, sectorID uint) ([]models.User, error)
}

// SectorStore manages sectors.
type SectorStore interface {
	FindByID(ctx context.Context, id uint) (*models.Sector, error)
	FindAll(ctx context.Context) ([]models.Sector, error)
	Create(ctx context.Context, sector *models.Sector) error
	ReplaceInstructorSectors(ctx context.Context, user *models.User, sectorIDs []uint) error
}

// EventKind names a notification.
type EventKind string

const (
	EventSubmitted         EventKind = "SUBMITTED"
	EventClaimed           EventKind = "CLAIMED"
	EventValidated         EventKind = "VALIDATED"
	EventRefused           EventKind = "REFUSED"
	EventReassigned        EventKind = "REASSIGNED"
	EventStarted           EventKind = "STARTED"
	EventCompleted         EventKind = "COMPLETED"
	EventUnclaimedReminder EventKind = "UNCLAIMED_REMINDER"
)

// Event describes something that happened to an internship. Recipients are
// resolved by the notifier.
type Event struct {
	Kind       EventKind
	Internship models.Internship
	ActorID    uint
	Comment    string
	OccurredAt time.Time
}

// Notifier delivers events. Failures never undo the transition that caused them.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// AuditEntry is one line of the activity log.
type AuditEntry struct {
	ActorID     uint
	ActorRole   models.Role
	Action      string
	EntityType  string
	EntityID    uint
	Description string
	Metadata    map[string]interface{}
}

// AuditLogger records successful actions. Failures are logged and ignored.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// MultiNotifier fans an event out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) error { return nil }

type logAuditLogger struct{}

func (logAuditLogger) Record(_ context.Context, e AuditEntry) error {
	log.Printf("[AUDIT] actor=%d action=%s entity=%s#%d %s", e.ActorID, e.Action, e.EntityType, e.EntityID, e.Description)
	return nil
}
