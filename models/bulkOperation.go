package models

import "fmt"

// BulkOperationType selects what a bulk request does to each internship.
type BulkOperationType string

const (
	BulkUpdateStatus     BulkOperationType = "UPDATE_STATUS"
	BulkAssignInstructor BulkOperationType = "ASSIGN_INSTRUCTOR"
	BulkValidate         BulkOperationType = "VALIDATE"
	BulkReject           BulkOperationType = "REJECT"
	BulkDelete           BulkOperationType = "DELETE"
)

// IsValid reports whether t is a known operation type.
func (t BulkOperationType) IsValid() bool {
	switch t {
	case BulkUpdateStatus, BulkAssignInstructor, BulkValidate, BulkReject, BulkDelete:
		return true
	}
	return false
}

type BulkOperationRequest struct {
	OperationType   BulkOperationType `json:"operationType"`
	InternshipIDs   []uint            `json:"internshipIds"`
	NewStatus       *Status           `json:"newStatus,omitempty"`
	InstructorID    *uint             `json:"instructorId,omitempty"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
}

// Check validates the payload required by the operation type.
func (r BulkOperationRequest) Check() error {
	if !r.OperationType.IsValid() {
		return fmt.Errorf("%w: unknown operation type %q", ErrValidation, r.OperationType)
	}
	if len(r.InternshipIDs) == 0 {
		return fmt.Errorf("%w: at least one internship id is required", ErrValidation)
	}
	switch r.OperationType {
	case BulkUpdateStatus:
		if r.NewStatus == nil || !r.NewStatus.IsValid() {
			return fmt.Errorf("%w: new status is required for %s", ErrValidation, r.OperationType)
		}
	case BulkAssignInstructor:
		if r.InstructorID == nil || *r.InstructorID == 0 {
			return fmt.Errorf("%w: instructor id is required for %s", ErrValidation, r.OperationType)
		}
	}
	return nil
}

// BulkItemResult is the outcome for one requested id.
type BulkItemResult struct {
	InternshipID uint   `json:"internshipId"`
	Success      bool   `json:"success"`
	Message      string `json:"message"`
}

type BulkOperationResult struct {
	OperationID    string            `json:"operationId"`
	OperationType  BulkOperationType `json:"operationType"`
	TotalRequested int               `json:"totalRequested"`
	SuccessCount   int               `json:"successCount"`
	FailureCount   int               `json:"failureCount"`
	Results        []BulkItemResult  `json:"results"`
	Message        string            `json:"message"`
}

// Summarize fills the counters and summary line from Results.
func (r *BulkOperationResult) Summarize() {
	r.SuccessCount, r.FailureCount = 0, 0
	for _, item := range r.Results {
		if item.Success {
			r.SuccessCount++
		} else {
			r.FailureCount++
		}
	}
	r.Message = fmt.Sprintf("Bulk operation completed: %d succeeded, %d failed out of %d requested",
		r.SuccessCount, r.FailureCount, r.TotalRequested)
}
