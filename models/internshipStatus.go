package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the workflow state of an internship.
type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusPendingValidation Status = "PENDING_VALIDATION"
	StatusValidated         Status = "VALIDATED"
	StatusRefused           Status = "REFUSED"
	StatusInProgress        Status = "IN_PROGRESS"
	StatusCompleted         Status = "COMPLETED"
)

// Legacy names still sent by older clients and found in old rows.
const (
	legacyPending  = "PENDING"
	legacyRejected = "REJECTED"
)

// AllStatuses lists the canonical states in lifecycle order.
var AllStatuses = []Status{
	StatusDraft,
	StatusPendingValidation,
	StatusValidated,
	StatusRefused,
	StatusInProgress,
	StatusCompleted,
}

// ParseStatus maps any accepted spelling onto its canonical state.
func ParseStatus(raw string) (Status, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch value {
	case legacyPending:
		return StatusPendingValidation, nil
	case legacyRejected:
		return StatusRefused, nil
	}
	for _, s := range AllStatuses {
		if string(s) == value {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
}

// IsValid reports whether s is one of the canonical states.
func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Scan normalizes legacy values coming back from the database.
func (s *Status) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*s = ""
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Status", value)
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value always persists the canonical name.
func (s Status) Value() (driver.Value, error) {
	if s == "" {
		return nil, nil
	}
	parsed, err := ParseStatus(string(s))
	if err != nil {
		return nil, err
	}
	return string(parsed), nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
