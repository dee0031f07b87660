package services

import (
	"context"
	"errors"
	"fmt"
	"internhub/models"
	"internhub/repository"
	"log"
	"time"
)

// Options tunes an InternshipService.
type Options struct {
	// BulkWorkers bounds concurrent items in a bulk operation. 1 keeps strict
	// input order of side effects.
	BulkWorkers int
	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// InternshipService is the lifecycle and assignment engine. It is stateless;
// concurrent calls only meet in the store.
type InternshipService struct {
	internships InternshipStore
	users       UserStore
	sectors     SectorStore
	notifier    Notifier
	audit       AuditLogger
	bulkWorkers int
	clock       func() time.Time
}

func NewInternshipService(internships InternshipStore, users UserStore, sectors SectorStore, notifier Notifier, audit AuditLogger, opts Options) *InternshipService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if audit == nil {
		audit = logAuditLogger{}
	}
	if opts.BulkWorkers < 1 {
		opts.BulkWorkers = 1
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &InternshipService{
		internships: internships,
		users:       users,
		sectors:     sectors,
		notifier:    notifier,
		audit:       audit,
		bulkWorkers: opts.BulkWorkers,
		clock:       opts.Clock,
	}
}

// ResolveActor loads the role and, for instructors, the assigned sectors of userID.
func (s *InternshipService) ResolveActor(ctx context.Context, userID uint) (Actor, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return Actor{}, fmt.Errorf("%w: unknown user %d", models.ErrUnauthorized, userID)
		}
		return Actor{}, err
	}
	actor := Actor{ID: user.ID, Role: user.Role}
	if user.Role == models.RoleInstructor {
		actor.SectorIDs = user.SectorIDs()
	}
	return actor, nil
}

func requireRole(actor Actor, roles ...models.Role) error {
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: Insufficient permissions", models.ErrUnauthorized)
}

func requireSector(actor Actor, in *models.Internship) error {
	if !actor.CoversSector(in.SectorID) {
		return fmt.Errorf("%w: internship %d is outside your assigned sectors", models.ErrUnauthorized, in.ID)
	}
	return nil
}

func requireOwner(actor Actor, in *models.Internship) error {
	if !in.IsOwnedBy(actor.ID) {
		return fmt.Errorf("%w: Not your internship", models.ErrUnauthorized)
	}
	return nil
}

// record and notify never fail the caller.
func (s *InternshipService) record(ctx context.Context, actor Actor, action, entityType string, entityID uint, description string, metadata map[string]interface{}) {
	entry := AuditEntry{
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		Metadata:    metadata,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		log.Printf("[INTERNSHIP] audit %s for %s#%d failed: %v", action, entityType, entityID, err)
	}
}

func (s *InternshipService) notify(ctx context.Context, kind EventKind, actor Actor, in *models.Internship, comment string) {
	event := Event{
		Kind:       kind,
		Internship: *in,
		ActorID:    actor.ID,
		Comment:    comment,
		OccurredAt: s.clock(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		log.Printf("[NOTIFY] %s for internship %d failed: %v", kind, in.ID, err)
	}
}

// commit persists a transition, then audits and notifies.
func (s *InternshipService) commit(ctx context.Context, actor Actor, in *models.Internship, action, description string, kind EventKind, comment string) error {
	if err := s.internships.Save(ctx, in); err != nil {
		return err
	}
	s.record(ctx, actor, action, models.EntityInternship, in.ID, description, nil)
	if kind != "" {
		s.notify(ctx, kind, actor, in, comment)
	}
	return nil
}

// CreateDraft creates a DRAFT internship owned by the acting student.
func (s *InternshipService) CreateDraft(ctx context.Context, actor Actor, d models.InternshipDetails) (in *models.Internship, err error) {
	defer func() { observe("create", err) }()

	if err := requireRole(actor, models.RoleStudent); err != nil {
		return nil, err
	}
	if d.SectorID != 0 {
		if _, err := s.sectors.FindByID(ctx, d.SectorID); err != nil {
			return nil, err
		}
	}
	in, err = models.NewDraft(actor.ID, d)
	if err != nil {
		return nil, err
	}
	if err := s.internships.Create(ctx, in); err != nil {
		return nil, err
	}
	s.record(ctx, actor, models.ActionInternshipCreate, models.EntityInternship, in.ID,
		fmt.Sprintf("Internship %d created: %s at %s", in.ID, in.Title, in.CompanyName), nil)
	return s.internships.FindByID(ctx, in.ID)
}

// Update edits the descriptive fields of the student's own DRAFT or REFUSED internship.
func (s *InternshipService) Update(ctx context.Context, actor Actor, id uint, d models.InternshipDetails) (in *models.Internship, err error) {
	defer func() { observe("update", err) }()

	if err := requireRole(actor, models.RoleStudent); err != nil {
		return nil, err
	}
	in, err = s.internships.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, in); err != nil {
		return nil, err
	}
	if d.SectorID != 0 && d.SectorID != in.SectorID {
		if _, err := s.sectors.FindByID(ctx, d.SectorID); err != nil {
			return nil, err
		}
	}
	if err := in.UpdateDetails(d); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, actor, in, models.ActionInternshipUpdate,
		fmt.Sprintf("Internship %d updated", in.ID), "", ""); err != nil {
		return nil, err
	}
	return s.internships.FindByID(ctx, id)
}

// Submit sends the student's internship for validation.
func (s *InternshipService) Submit(ctx context.Context, actor Actor, id uint) (in *models.Internship, err error) {
	defer func() { observe("submit", err) }()

	if err := requireRole(actor, models.RoleStudent); err != nil {
		return nil, err
	}
	in, err = s.internships.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, in); err != nil {
		return nil, err
	}
	if err := in.Submit(s.clock()); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, actor, in, models.ActionInternshipSubmit,
		fmt.Sprintf("Internship %d submitted for validation", in.ID), EventSubmitted, ""); err != nil {
		return nil, err
	}
	return in, nil
}

// GetAvailableForInstructor lists pending, unclaimed internships in the
// instructor's sectors. The answer may be stale as soon as it is returned.
func (s *InternshipService) GetAvailableForInstructor(ctx context.Context, actor Actor) ([]models.Internship, error) {
	if err := requireRole(actor, models.RoleInstructor); err != nil {
		return nil, err
	}
	pending := models.StatusPendingValidation
	return s.internships.Search(ctx, repository.SearchCriteria{
		Status:     &pending,
		Unassigned: true,
		SectorIDs:  sectorSet(actor.SectorIDs),
	})
}

// ListPendingForInstructor lists every pending internship in the instructor's
// sectors, claimed or not.
func (s *InternshipService) ListPendingForInstructor(ctx context.Context, actor Actor) ([]models.Internship, error) {
	if err := requireRole(actor, models.RoleInstructor); err != nil {
		return nil, err
	}
	pending := models.StatusPendingValidation
	return s.internships.Search(ctx, repository.SearchCriteria{
		Status:    &pending,
		SectorIDs: sectorSet(actor.SectorIDs),
	})
}

// ListValidatedForInstructor lists internships the instructor validated.
func (s *InternshipService) ListValidatedForInstructor(ctx context.Context, actor Actor) ([]models.Internship, error) {
	if err := requireRole(actor, models.RoleInstructor); err != nil {
		return nil, err
	}
	validated := models.StatusValidated
	instructorID := actor.ID
	return s.internships.Search(ctx, repository.SearchCriteria{
		Status:       &validated,
		InstructorID: &instructorID,
	})
}

func sectorSet(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}

// Claim makes the acting instructor the reviewer. Of several concurrent claims
// exactly one wins; the others get ErrAlreadyClaimed.
func (s *InternshipService) Claim(ctx context.Context, actor Actor, id uint) (in *models.Internship, err error) {
	defer func() { observe("claim", err) }()

	if err := requireRole(actor, models.RoleInstructor); err != nil {
		return nil, err
	}
	in, err = s.internships.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireSector(actor, in); err != nil {
		return nil, err
	}
	if err := in.Claim(actor.ID); err != nil {
		return nil, err
	}

	won, err := s.internships.ClaimIfUnassigned(ctx, id, actor.ID, s.clock())
	if err != nil {
		return nil, err
	}
	if !won {
		// Someone changed the row between our read and the conditional write.
		current, err := s.internships.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := current.Claim(actor.ID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: internship %d is already claimed by another instructor", models.ErrAlreadyClaimed, id)
	}

	in, err = s.internships.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, models.ActionInternshipClaim, models.EntityInternship, in.ID,
		fmt.Sprintf("Internship %d claimed by instructor %d", in.ID, actor.ID), nil)
	s.notify(ctx, EventClaimed, actor, in, "")
	return in, nil
}

// Validate approves a pending internship in one of the instructor's sectors.
// No prior claim is needed and the acting instructor becomes the reviewer.
func (s *InternshipService) Validate(ctx context.Context, actor Actor, id uint) (in *models.Internship, err error) {
	defer func() { observe("validate", err) }()

	if err := requireRole(actor, models.RoleInstructor); err != nil {
		return nil, err
	}
	in, err = s.internships.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireSector(actor, in); err != nil {
		return nil, err
	}
	reviewer := actor.ID
	if err := in.Validate(&reviewer, s.clock()); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, actor, in, models.ActionInternshipValidate,
		fmt.Sprintf("Internship %d validated by instructor %d", in.ID, actor.ID), EventValidated, ""); err != nil {
		return nil, err
	}
	return s.internships.FindByID(ctx, id)
}

// Refuse sends a pending internship back to its student with comment.
func (s *InternshipService) Refuse(ctx context.Context, actor Actor, id uint, comment string) (in *models.Internship, err error) {
	defer func() { observe("refuse", err) }()

	if err := requireRole(actor, models.RoleInstructor); err != nil {
		return nil, err
	}
	in, err = s.internships.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireSector(actor, in); err != nil {
		return nil, err
	}
	if err := in.Refuse(comment); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, actor, in, models.ActionInternshipRefuse,
		fmt.Sprintf("Internship %d refused by instructor %d: %s", in.ID, actor.ID, *in.RefusalComment), EventRefused, *in.RefusalComment); err != nil {
		return nil, err
	}
	return s.internships.FindByID(ctx, id)
}

// findInstructor loads a user that must hold the INSTRUCTOR role.
func (s *InternshipService) findInstructor(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: Instructor not found: %d", models.ErrNotFound, userID)
		}
		return nil, err
	}
	if user.Role != models.RoleInstructor {
		return nil, fmt.Errorf("%w: User is not an instructor", models.ErrValidation)
	}
	return user, nil
}

// Reassign overwrites the reviewer of any internship, whatever its status.
func (s *InternshipService) Reassign(ctx context.Context, actor Actor, id, instructorID uint) (in *models.Internship, err error) {
	defer func() { observe("reassign", err) }()

	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	in, err = s.internships.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	instructor, err := s.findInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	in.AssignInstructor(instructor.ID)
	if err := s.commit(ctx, actor, in, models.ActionInternshipReassign,
		fmt.Sprintf("Internship %d reassigned to instructor %d", in.ID, instructor.ID), EventReassigned, ""); err != nil {
		return nil, err
	}
	return s.internships.FindByID(ctx, id)
}

// canDelete: admins always; students only for their own pending internship.
func canDelete(actor Actor, in *models.Internship) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.IsStudent() && in.IsOwnedBy(actor.ID) && in.Status == models.StatusPendingValidation
}

// Delete removes an internship.
func (s *InternshipService) Delete(ctx context.Context, actor Actor, id uint) (err error) {
	defer func() { observe("delete", err) }()

	in, err := s.internships.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !canDelete(actor, in) {
		return fmt.Errorf("%w: Not authorized to delete", models.ErrUnauthorized)
	}
	return s.deleteInternship(ctx, actor, in)
}

func (s *InternshipService) deleteInternship(ctx context.Context, actor Actor, in *models.Internship) error {
	if err := s.internships.Delete(ctx, in.ID); err != nil {
		return err
	}
	s.record(ctx, actor, models.ActionInternshipDelete, models.EntityInternship, in.ID,
		fmt.Sprintf("Internship %d deleted (%s at %s)", in.ID, in.Title, in.CompanyName), nil)
	return nil
}

func canView(actor Actor, in *models.Internship) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleStudent:
		return in.IsOwnedBy(actor.ID)
	case models.RoleInstructor:
		return in.IsAssignedTo(actor.ID) || actor.CoversSector(in.SectorID)
	}
	return false
}

// GetByID returns one internship the actor is allowed to see.
func (s *InternshipService) GetByID(ctx context.Context, actor Actor, id uint) (*models.Internship, error) {
	in, err := s.internships.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, in) {
		return nil, fmt.Errorf("%w: You cannot view this internship", models.ErrUnauthorized)
	}
	return in, nil
}

// ListAll returns every internship (admin).
func (s *InternshipService) ListAll(ctx context.Context, actor Actor) ([]models.Internship, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.internships.Search(ctx, repository.SearchCriteria{})
}

// ListForStudent returns the acting student's internships.
func (s *InternshipService) ListForStudent(ctx context.Context, actor Actor) ([]models.Internship, error) {
	if err := requireRole(actor, models.RoleStudent); err != nil {
		return nil, err
	}
	studentID := actor.ID
	return s.internships.Search(ctx, repository.SearchCriteria{StudentID: &studentID})
}

// Search returns every match of c.
func (s *InternshipService) Search(ctx context.Context, actor Actor, c repository.SearchCriteria) ([]models.Internship, error) {
	if err := requireRole(actor, models.RoleAdmin, models.RoleInstructor); err != nil {
		return nil, err
	}
	return s.internships.Search(ctx, c)
}

// SearchPage returns one sorted page of the matches of c.
func (s *InternshipService) SearchPage(ctx context.Context, actor Actor, c repository.SearchCriteria, p repository.PageRequest) (*repository.Page, error) {
	if err := requireRole(actor, models.RoleAdmin, models.RoleInstructor); err != nil {
		return nil, err
	}
	return s.internships.SearchPage(ctx, c, p)
}
