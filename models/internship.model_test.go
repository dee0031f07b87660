package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func details() InternshipDetails {
	return InternshipDetails{
		Title:       "Backend intern",
		CompanyName: "Acme",
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		SectorID:    1,
	}
}

func uintPtr(v uint) *uint { return &v }

func pending(t *testing.T) *Internship {
	t.Helper()
	in, err := NewDraft(7, details())
	require.NoError(t, err)
	require.NoError(t, in.Submit(time.Now()))
	return in
}

// refusalComment is set exactly when the status is REFUSED.
func assertRefusalCoupling(t *testing.T, in *Internship) {
	t.Helper()
	assert.Equal(t, in.Status == StatusRefused, in.RefusalComment != nil,
		"status %s with refusal comment %v", in.Status, in.RefusalComment)
}

func TestNewDraft(t *testing.T) {
	in, err := NewDraft(7, details())
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, in.Status)
	assert.Equal(t, uint(7), in.StudentID)
	assert.Nil(t, in.InstructorID)
	assert.True(t, in.IsModifiable())
	assertRefusalCoupling(t, in)

	bad := details()
	bad.StartDate, bad.EndDate = bad.EndDate, bad.StartDate
	_, err = NewDraft(7, bad)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewDraft(0, details())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitOnlyFromDraftOrRefused(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	for _, from := range AllStatuses {
		t.Run(string(from), func(t *testing.T) {
			in := &Internship{ID: 1, StudentID: 7, Status: from, InstructorID: uintPtr(3)}
			if from == StatusRefused {
				c := "too generic"
				in.RefusalComment = &c
			}
			before := *in

			err := in.Submit(now)
			if from == StatusDraft || from == StatusRefused {
				require.NoError(t, err)
				assert.Equal(t, StatusPendingValidation, in.Status)
				require.NotNil(t, in.SubmittedAt)
				assert.Equal(t, now, *in.SubmittedAt)
				assert.Nil(t, in.InstructorID)
				assert.Nil(t, in.RefusalComment)
				return
			}

			var te *TransitionError
			require.ErrorAs(t, err, &te)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, from, te.From)
			assert.Equal(t, OpSubmit, te.Operation)
			assert.Equal(t, "Cannot submit internship with status "+string(from), err.Error())
			assert.Equal(t, before, *in, "failed transition must leave the entity unchanged")
		})
	}
}

func TestClaim(t *testing.T) {
	in := pending(t)
	require.NoError(t, in.Claim(11))
	assert.Equal(t, uint(11), *in.InstructorID)
	assert.Equal(t, StatusPendingValidation, in.Status)

	err := in.Claim(12)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, uint(11), *in.InstructorID)

	draft, err := NewDraft(7, details())
	require.NoError(t, err)
	assert.ErrorIs(t, draft.Claim(11), ErrInvalidTransition)
}

func TestValidateWithoutClaim(t *testing.T) {
	in := pending(t)
	now := time.Now()
	require.NoError(t, in.Validate(uintPtr(11), now))
	assert.Equal(t, StatusValidated, in.Status)
	assert.Equal(t, uint(11), *in.InstructorID)
	require.NotNil(t, in.ValidatedAt)
	assert.Nil(t, in.RefusalComment)
	assert.False(t, in.IsModifiable())

	assert.ErrorIs(t, in.Validate(uintPtr(11), now), ErrInvalidTransition)
}

func TestValidateOverwritesClaimer(t *testing.T) {
	in := pending(t)
	require.NoError(t, in.Claim(11))
	require.NoError(t, in.Validate(uintPtr(12), time.Now()))
	assert.Equal(t, uint(12), *in.InstructorID)
}

func TestValidateKeepsReviewerWhenNil(t *testing.T) {
	in := pending(t)
	require.NoError(t, in.Claim(11))
	require.NoError(t, in.Validate(nil, time.Now()))
	assert.Equal(t, uint(11), *in.InstructorID)
	assert.NotNil(t, in.ValidatedAt)
}

func TestRefuse(t *testing.T) {
	in := pending(t)
	require.NoError(t, in.Claim(11))

	err := in.Refuse("   ")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StatusPendingValidation, in.Status)
	assertRefusalCoupling(t, in)

	require.NoError(t, in.Refuse("too generic"))
	assert.Equal(t, StatusRefused, in.Status)
	assert.Equal(t, "too generic", *in.RefusalComment)
	assert.Equal(t, uint(11), *in.InstructorID)
	assert.True(t, in.IsModifiable())
	assertRefusalCoupling(t, in)

	assert.ErrorIs(t, in.Refuse("again"), ErrInvalidTransition)
}

func TestClaimRefuseResubmitScenario(t *testing.T) {
	in := pending(t)
	assert.Nil(t, in.InstructorID)
	require.NotNil(t, in.SubmittedAt)

	require.NoError(t, in.Claim(11))
	assert.ErrorIs(t, in.Claim(12), ErrAlreadyClaimed)

	require.NoError(t, in.Refuse("too generic"))
	assert.Equal(t, uint(11), *in.InstructorID)

	require.NoError(t, in.Submit(time.Now()))
	assert.Equal(t, StatusPendingValidation, in.Status)
	assert.Nil(t, in.RefusalComment)
	assert.Nil(t, in.InstructorID)
	assertRefusalCoupling(t, in)
}

func TestStartAndComplete(t *testing.T) {
	in := pending(t)
	assert.ErrorIs(t, in.Start(), ErrInvalidTransition)
	require.NoError(t, in.Validate(uintPtr(11), time.Now()))
	assert.ErrorIs(t, in.Complete(), ErrInvalidTransition)
	require.NoError(t, in.Start())
	assert.Equal(t, StatusInProgress, in.Status)
	require.NoError(t, in.Complete())
	assert.Equal(t, StatusCompleted, in.Status)
	assert.Equal(t, uint(11), *in.InstructorID)
}

func TestUpdateDetailsRequiresModifiable(t *testing.T) {
	in := pending(t)
	err := in.UpdateDetails(details())
	assert.ErrorIs(t, err, ErrNotModifiable)

	draft, err := NewDraft(7, details())
	require.NoError(t, err)
	d := details()
	d.Title = "Data intern"
	require.NoError(t, draft.UpdateDetails(d))
	assert.Equal(t, "Data intern", draft.Title)
}

func TestTransitionTo(t *testing.T) {
	in := pending(t)
	err := in.TransitionTo(StatusDraft, nil, "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = in.TransitionTo(StatusRefused, nil, "", time.Now())
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, in.TransitionTo(StatusRefused, nil, "missing dates", time.Now()))
	assert.Equal(t, StatusRefused, in.Status)

	require.NoError(t, in.TransitionTo(StatusPendingValidation, nil, "", time.Now()))
	require.NoError(t, in.TransitionTo(StatusValidated, uintPtr(4), "", time.Now()))
	assert.Equal(t, uint(4), *in.InstructorID)
}

func TestAssignInstructorIgnoresStatus(t *testing.T) {
	for _, s := range AllStatuses {
		in := &Internship{Status: s}
		in.AssignInstructor(9)
		assert.Equal(t, uint(9), *in.InstructorID)
		assert.Equal(t, s, in.Status)
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "refusal comment is required", Message(pending(t).Refuse("")))
	assert.Equal(t, "Cannot start internship with status DRAFT", Message((&Internship{Status: StatusDraft}).Start()))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "Sector not found: 7", Message(fmt.Errorf("%w: Sector not found: 7", ErrNotFound)))
	assert.Equal(t, "not found", Message(ErrNotFound))
	assert.Equal(t, "not found: ", Message(fmt.Errorf("%w: ", ErrNotFound)))
	assert.True(t, IsDomainError(ErrAlreadyClaimed))
	assert.False(t, IsDomainError(errors.New("connection refused")))
}

func TestPersistedSnapshot(t *testing.T) {
	in := &Internship{ID: 1, Status: StatusPendingValidation}
	_, ok := in.PersistedStatus()
	assert.False(t, ok)
	assert.True(t, in.InstructorChanged())

	in.MarkPersisted()
	status, ok := in.PersistedStatus()
	assert.True(t, ok)
	assert.Equal(t, StatusPendingValidation, status)
	assert.False(t, in.InstructorChanged())

	require.NoError(t, in.Refuse("no tutor"))
	assert.False(t, in.InstructorChanged())
	status, _ = in.PersistedStatus()
	assert.Equal(t, StatusPendingValidation, status)

	in.AssignInstructor(7)
	assert.True(t, in.InstructorChanged())
	in.MarkPersisted()
	in.AssignInstructor(7)
	assert.False(t, in.InstructorChanged())
}
