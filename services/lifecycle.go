package services

import (
	"context"
	"fmt"
	"internhub/models"
	"internhub/repository"
	"log"
	"time"

	"github.com/jinzhu/now"
)

// AdvanceLifecycle starts validated internships whose start date has come and
// completes running ones whose end date has passed.
func (s *InternshipService) AdvanceLifecycle(ctx context.Context, at time.Time) (started, completed int, err error) {
	endOfToday := now.With(at).EndOfDay()
	beforeToday := now.With(at).BeginningOfDay().Add(-time.Nanosecond)

	validated := models.StatusValidated
	due, err := s.internships.Search(ctx, repository.SearchCriteria{Status: &validated, StartDateTo: &endOfToday})
	if err != nil {
		return 0, 0, err
	}
	for i := range due {
		in := &due[i]
		if err := in.Start(); err != nil {
			log.Printf("[LIFECYCLE] skip start of internship %d: %v", in.ID, err)
			continue
		}
		if err := s.commit(ctx, SystemActor, in, models.ActionInternshipStart,
			fmt.Sprintf("Internship %d started on %s", in.ID, in.StartDate.Format("2006-01-02")), EventStarted, ""); err != nil {
			if models.IsDomainError(err) {
				continue
			}
			return started, completed, err
		}
		started++
	}

	running := models.StatusInProgress
	finished, err := s.internships.Search(ctx, repository.SearchCriteria{Status: &running, EndDateTo: &beforeToday})
	if err != nil {
		return started, completed, err
	}
	for i := range finished {
		in := &finished[i]
		if err := in.Complete(); err != nil {
			log.Printf("[LIFECYCLE] skip completion of internship %d: %v", in.ID, err)
			continue
		}
		if err := s.commit(ctx, SystemActor, in, models.ActionInternshipComplete,
			fmt.Sprintf("Internship %d completed on %s", in.ID, in.EndDate.Format("2006-01-02")), EventCompleted, ""); err != nil {
			if models.IsDomainError(err) {
				continue
			}
			return started, completed, err
		}
		completed++
	}

	return started, completed, nil
}

// RemindUnclaimed notifies sector instructors about pending internships that
// nobody claimed within olderThan.
func (s *InternshipService) RemindUnclaimed(ctx context.Context, olderThan time.Duration) (int, error) {
	pending := models.StatusPendingValidation
	cutoff := s.clock().Add(-olderThan)
	stale, err := s.internships.Search(ctx, repository.SearchCriteria{
		Status:          &pending,
		Unassigned:      true,
		SubmittedBefore: &cutoff,
	})
	if err != nil {
		return 0, err
	}
	for i := range stale {
		s.notify(ctx, EventUnclaimedReminder, SystemActor, &stale[i], "")
	}
	return len(stale), nil
}
