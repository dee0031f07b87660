package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Internship is the aggregate moved through the approval workflow. Workflow
// fields are only changed through the transition methods below.
type Internship struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Title          string     `gorm:"not null;type:varchar(200)" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	CompanyName    string     `gorm:"not null;type:varchar(200);index" json:"companyName"`
	CompanyAddress string     `gorm:"type:varchar(300)" json:"companyAddress"`
	StartDate      time.Time  `gorm:"not null;index" json:"startDate"`
	EndDate        time.Time  `gorm:"not null;index" json:"endDate"`
	SectorID       uint       `gorm:"not null;index" json:"sectorId"`
	StudentID      uint       `gorm:"not null;index;<-:create" json:"studentId"`
	Status         Status     `gorm:"type:varchar(30);not null;default:'DRAFT';index" json:"status"`
	InstructorID   *uint      `gorm:"index" json:"instructorId"`
	RefusalComment *string    `gorm:"type:text" json:"refusalComment"`
	SubmittedAt    *time.Time `json:"submittedAt"`
	ValidatedAt    *time.Time `json:"validatedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	// Relations
	Sector     *Sector `gorm:"foreignKey:SectorID" json:"sector,omitempty"`
	Student    *User   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Instructor *User   `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`

	loaded persistedState
}

// persistedState is the row as last read or written, which a save is
// conditioned on.
type persistedState struct {
	ok           bool
	status       Status
	instructorID *uint
}

func (i *Internship) AfterFind(*gorm.DB) error {
	i.MarkPersisted()
	return nil
}

func (i *Internship) AfterCreate(*gorm.DB) error {
	i.MarkPersisted()
	return nil
}

// MarkPersisted records the current status and reviewer as the stored state.
func (i *Internship) MarkPersisted() {
	i.loaded = persistedState{ok: true, status: i.Status}
	if i.InstructorID != nil {
		id := *i.InstructorID
		i.loaded.instructorID = &id
	}
}

// PersistedStatus is the status the row had when it was loaded. ok is false
// for an internship that never went through the database.
func (i *Internship) PersistedStatus() (status Status, ok bool) {
	return i.loaded.status, i.loaded.ok
}

// InstructorChanged reports whether a transition or reassignment changed the
// reviewer since the row was loaded.
func (i *Internship) InstructorChanged() bool {
	if !i.loaded.ok {
		return true
	}
	before, after := i.loaded.instructorID, i.InstructorID
	if before == nil || after == nil {
		return before != after
	}
	return *before != *after
}

// InternshipDetails are the descriptive fields a student controls.
type InternshipDetails struct {
	Title          string
	Description    string
	CompanyName    string
	CompanyAddress string
	StartDate      time.Time
	EndDate        time.Time
	SectorID       uint
}

// Check validates the descriptive fields.
func (d InternshipDetails) Check() error {
	var problems []string
	if strings.TrimSpace(d.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(d.CompanyName) == "" {
		problems = append(problems, "company name is required")
	}
	if d.SectorID == 0 {
		problems = append(problems, "sector is required")
	}
	if d.StartDate.IsZero() || d.EndDate.IsZero() {
		problems = append(problems, "start and end dates are required")
	} else if d.StartDate.After(d.EndDate) {
		problems = append(problems, "start date must not be after end date")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// NewDraft builds a DRAFT internship owned by studentID.
func NewDraft(studentID uint, d InternshipDetails) (*Internship, error) {
	if studentID == 0 {
		return nil, fmt.Errorf("%w: student is required", ErrValidation)
	}
	if err := d.Check(); err != nil {
		return nil, err
	}
	in := &Internship{StudentID: studentID, Status: StatusDraft}
	in.setDetails(d)
	return in, nil
}

func (i *Internship) setDetails(d InternshipDetails) {
	i.Title = strings.TrimSpace(d.Title)
	i.Description = d.Description
	i.CompanyName = strings.TrimSpace(d.CompanyName)
	i.CompanyAddress = d.CompanyAddress
	i.StartDate = d.StartDate
	i.EndDate = d.EndDate
	if i.SectorID != d.SectorID {
		i.Sector = nil
	}
	i.SectorID = d.SectorID
}

// IsModifiable is true while the student may still edit the descriptive fields.
func (i *Internship) IsModifiable() bool {
	return i.Status == StatusDraft || i.Status == StatusRefused
}

// UpdateDetails replaces the descriptive fields of a DRAFT or REFUSED internship.
func (i *Internship) UpdateDetails(d InternshipDetails) error {
	if !i.IsModifiable() {
		return fmt.Errorf("%w: cannot modify internship with status %s", ErrNotModifiable, i.Status)
	}
	if err := d.Check(); err != nil {
		return err
	}
	i.setDetails(d)
	return nil
}

// Submit sends a DRAFT or REFUSED internship for validation and reopens it for claiming.
func (i *Internship) Submit(now time.Time) error {
	if i.Status != StatusDraft && i.Status != StatusRefused {
		return &TransitionError{From: i.Status, Operation: OpSubmit}
	}
	i.Status = StatusPendingValidation
	i.SubmittedAt = &now
	i.RefusalComment = nil
	i.InstructorID = nil
	i.Instructor = nil
	return nil
}

// Claim records instructorID as the reviewer of a pending, unclaimed internship.
// Persisting a claim must go through an atomic conditional update; this method
// only decides legality against the loaded snapshot.
func (i *Internship) Claim(instructorID uint) error {
	if i.Status != StatusPendingValidation {
		return &TransitionError{From: i.Status, Operation: OpClaim}
	}
	if i.InstructorID != nil {
		return fmt.Errorf("%w: internship %d is already claimed by another instructor", ErrAlreadyClaimed, i.ID)
	}
	id := instructorID
	i.InstructorID = &id
	return nil
}

// Validate approves a pending internship. A nil instructorID keeps the
// current reviewer, which is how administrators validate.
func (i *Internship) Validate(instructorID *uint, now time.Time) error {
	if i.Status != StatusPendingValidation {
		return &TransitionError{From: i.Status, Operation: OpValidate}
	}
	if instructorID != nil {
		id := *instructorID
		if i.InstructorID == nil || *i.InstructorID != id {
			i.Instructor = nil
		}
		i.InstructorID = &id
	}
	i.Status = StatusValidated
	i.ValidatedAt = &now
	i.RefusalComment = nil
	return nil
}

// Refuse sends a pending internship back to the student with a reason.
func (i *Internship) Refuse(comment string) error {
	if i.Status != StatusPendingValidation {
		return &TransitionError{From: i.Status, Operation: OpRefuse}
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return fmt.Errorf("%w: refusal comment is required", ErrValidation)
	}
	i.Status = StatusRefused
	i.RefusalComment = &comment
	return nil
}

// Start marks a validated internship as running.
func (i *Internship) Start() error {
	if i.Status != StatusValidated {
		return &TransitionError{From: i.Status, Operation: OpStart}
	}
	i.Status = StatusInProgress
	return nil
}

// Complete closes a running internship.
func (i *Internship) Complete() error {
	if i.Status != StatusInProgress {
		return &TransitionError{From: i.Status, Operation: OpComplete}
	}
	i.Status = StatusCompleted
	return nil
}

// AssignInstructor overwrites the reviewer regardless of status.
// Administrative reassignment, not a transition.
func (i *Internship) AssignInstructor(instructorID uint) {
	id := instructorID
	if i.InstructorID == nil || *i.InstructorID != id {
		i.Instructor = nil
	}
	i.InstructorID = &id
}

// TransitionTo reaches target through the matching transition. by is the
// reviewer recorded on validation; comment is the refusal reason.
func (i *Internship) TransitionTo(target Status, by *uint, comment string, now time.Time) error {
	switch target {
	case StatusPendingValidation:
		return i.Submit(now)
	case StatusValidated:
		return i.Validate(by, now)
	case StatusRefused:
		return i.Refuse(comment)
	case StatusInProgress:
		return i.Start()
	case StatusCompleted:
		return i.Complete()
	case StatusDraft:
		return &TransitionError{From: i.Status, Operation: OpMoveTo}
	}
	return fmt.Errorf("%w: unknown status %q", ErrValidation, target)
}

// IsOwnedBy reports whether userID is the student who created the internship.
func (i *Internship) IsOwnedBy(userID uint) bool {
	return i.StudentID == userID
}

// IsAssignedTo reports whether userID is the current reviewer.
func (i *Internship) IsAssignedTo(userID uint) bool {
	return i.InstructorID != nil && *i.InstructorID == userID
}
