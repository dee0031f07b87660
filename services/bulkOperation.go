package services

import (
	"context"
	"errors"
	"fmt"
	"internhub/models"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PerformBulkOperation applies one operation to every requested internship.
// Each item is authorized, transitioned and committed on its own; a domain
// failure is recorded in that item's result and the batch continues. Only an
// infrastructure error aborts, leaving already committed items in place.
// Results follow the order of req.InternshipIDs.
func (s *InternshipService) PerformBulkOperation(ctx context.Context, actor Actor, req models.BulkOperationRequest) (*models.BulkOperationResult, error) {
	if err := req.Check(); err != nil {
		return nil, err
	}
	started := time.Now()
	defer func() {
		bulkDuration.WithLabelValues(string(req.OperationType)).Observe(time.Since(started).Seconds())
	}()

	result := &models.BulkOperationResult{
		OperationID:    uuid.NewString(),
		OperationType:  req.OperationType,
		TotalRequested: len(req.InternshipIDs),
		Results:        make([]models.BulkItemResult, len(req.InternshipIDs)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkWorkers)
	for i, id := range req.InternshipIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item, err := s.bulkItem(gctx, actor, req, id)
			if err != nil {
				return fmt.Errorf("bulk %s aborted at internship %d: %w", req.OperationType, id, err)
			}
			result.Results[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("[BULK] %s %s by user %d: %v", result.OperationID, req.OperationType, actor.ID, err)
		return nil, err
	}

	result.Summarize()
	log.Printf("[BULK] %s %s by user %d: %s", result.OperationID, req.OperationType, actor.ID, result.Message)
	s.record(ctx, actor, models.ActionBulkOperation, models.EntityInternship, 0, result.Message, map[string]interface{}{
		"operationId":   result.OperationID,
		"operationType": req.OperationType,
		"internshipIds": req.InternshipIDs,
		"successCount":  result.SuccessCount,
		"failureCount":  result.FailureCount,
	})
	return result, nil
}

// bulkItem returns an error only for failures that must abort the batch.
func (s *InternshipService) bulkItem(ctx context.Context, actor Actor, req models.BulkOperationRequest, id uint) (models.BulkItemResult, error) {
	op := string(req.OperationType)

	in, err := s.internships.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			bulkItemsTotal.WithLabelValues(op, outcome(err)).Inc()
			return models.BulkItemResult{InternshipID: id, Message: fmt.Sprintf("Internship not found: %d", id)}, nil
		}
		return models.BulkItemResult{}, err
	}

	var message string
	switch req.OperationType {
	case models.BulkUpdateStatus:
		message, err = s.bulkUpdateStatus(ctx, actor, in, *req.NewStatus, req.RejectionReason)
	case models.BulkAssignInstructor:
		message, err = s.bulkAssignInstructor(ctx, actor, in, *req.InstructorID)
	case models.BulkValidate:
		message, err = s.bulkValidate(ctx, actor, in)
	case models.BulkReject:
		message, err = s.bulkReject(ctx, actor, in, req.RejectionReason)
	case models.BulkDelete:
		message, err = s.bulkDelete(ctx, actor, in)
	}
	bulkItemsTotal.WithLabelValues(op, outcome(err)).Inc()

	if err != nil {
		if models.IsDomainError(err) {
			return models.BulkItemResult{InternshipID: id, Message: models.Message(err)}, nil
		}
		return models.BulkItemResult{}, err
	}
	return models.BulkItemResult{InternshipID: id, Success: true, Message: message}, nil
}

func notAuthorized(what string) error {
	return fmt.Errorf("%w: Not authorized to %s", models.ErrUnauthorized, what)
}

// canUpdateStatus: admins always, the assigned instructor, or the owning
// student while the internship is pending or refused.
func canUpdateStatus(actor Actor, in *models.Internship) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleInstructor:
		return in.IsAssignedTo(actor.ID)
	case models.RoleStudent:
		return in.IsOwnedBy(actor.ID) &&
			(in.Status == models.StatusPendingValidation || in.Status == models.StatusRefused)
	}
	return false
}

// canReview: admins always, instructors only on internships assigned to them.
func canReview(actor Actor, in *models.Internship) bool {
	return actor.IsAdmin() || (actor.IsInstructor() && in.IsAssignedTo(actor.ID))
}

// reviewer is the instructor recorded by a validation: the acting instructor,
// or nil for admins so the current one is kept.
func reviewer(actor Actor) *uint {
	if actor.IsInstructor() {
		id := actor.ID
		return &id
	}
	return nil
}

var statusActions = map[models.Status]struct {
	action string
	event  EventKind
}{
	models.StatusPendingValidation: {models.ActionInternshipSubmit, EventSubmitted},
	models.StatusValidated:         {models.ActionInternshipValidate, EventValidated},
	models.StatusRefused:           {models.ActionInternshipRefuse, EventRefused},
	models.StatusInProgress:        {models.ActionInternshipStart, EventStarted},
	models.StatusCompleted:         {models.ActionInternshipComplete, EventCompleted},
}

func (s *InternshipService) bulkUpdateStatus(ctx context.Context, actor Actor, in *models.Internship, target models.Status, reason string) (string, error) {
	if !canUpdateStatus(actor, in) {
		return "", notAuthorized("update status")
	}
	from := in.Status
	if err := in.TransitionTo(target, reviewer(actor), reason, s.clock()); err != nil {
		return "", err
	}
	meta := statusActions[target]
	comment := ""
	if in.RefusalComment != nil {
		comment = *in.RefusalComment
	}
	if err := s.commit(ctx, actor, in, meta.action,
		fmt.Sprintf("Internship %d moved from %s to %s (bulk)", in.ID, from, target), meta.event, comment); err != nil {
		return "", err
	}
	return fmt.Sprintf("Status updated to %s", target), nil
}

func (s *InternshipService) bulkAssignInstructor(ctx context.Context, actor Actor, in *models.Internship, instructorID uint) (string, error) {
	if !actor.IsAdmin() && !actor.IsInstructor() {
		return "", notAuthorized("assign instructor")
	}
	instructor, err := s.findInstructor(ctx, instructorID)
	if err != nil {
		return "", err
	}
	in.AssignInstructor(instructor.ID)
	if err := s.commit(ctx, actor, in, models.ActionInternshipReassign,
		fmt.Sprintf("Internship %d assigned to instructor %d (bulk)", in.ID, instructor.ID), EventReassigned, ""); err != nil {
		return "", err
	}
	return "Instructor assigned successfully", nil
}

func (s *InternshipService) bulkValidate(ctx context.Context, actor Actor, in *models.Internship) (string, error) {
	if !canReview(actor, in) {
		return "", notAuthorized("validate")
	}
	if err := in.Validate(reviewer(actor), s.clock()); err != nil {
		return "", err
	}
	if err := s.commit(ctx, actor, in, models.ActionInternshipValidate,
		fmt.Sprintf("Internship %d validated (bulk)", in.ID), EventValidated, ""); err != nil {
		return "", err
	}
	return "Internship validated", nil
}

func (s *InternshipService) bulkReject(ctx context.Context, actor Actor, in *models.Internship, reason string) (string, error) {
	if !canReview(actor, in) {
		return "", notAuthorized("reject")
	}
	if err := in.Refuse(reason); err != nil {
		return "", err
	}
	if err := s.commit(ctx, actor, in, models.ActionInternshipRefuse,
		fmt.Sprintf("Internship %d rejected (bulk): %s", in.ID, *in.RefusalComment), EventRefused, *in.RefusalComment); err != nil {
		return "", err
	}
	return "Internship rejected", nil
}

func (s *InternshipService) bulkDelete(ctx context.Context, actor Actor, in *models.Internship) (string, error) {
	if !canDelete(actor, in) {
		return "", notAuthorized("delete")
	}
	if err := s.deleteInternship(ctx, actor, in); err != nil {
		return "", err
	}
	return "Internship deleted", nil
}
