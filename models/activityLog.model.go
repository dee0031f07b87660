package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity action values
const (
	ActionInternshipCreate   = "INTERNSHIP_CREATE"
	ActionInternshipUpdate   = "INTERNSHIP_UPDATE"
	ActionInternshipSubmit   = "INTERNSHIP_SUBMIT"
	ActionInternshipClaim    = "INTERNSHIP_CLAIM"
	ActionInternshipValidate = "INTERNSHIP_VALIDATE"
	ActionInternshipRefuse   = "INTERNSHIP_REFUSE"
	ActionInternshipReassign = "INTERNSHIP_REASSIGN"
	ActionInternshipDelete   = "INTERNSHIP_DELETE"
	ActionInternshipStart    = "INTERNSHIP_START"
	ActionInternshipComplete = "INTERNSHIP_COMPLETE"
	ActionBulkOperation      = "BULK_OPERATION"
	ActionSectorCreate       = "SECTOR_CREATE"
	ActionSectorAssign       = "SECTOR_ASSIGN"
	ActionUserSignup         = "USER_SIGNUP"
)

// Entity type values
const (
	EntityInternship = "INTERNSHIP"
	EntitySector     = "SECTOR"
	EntityUser       = "USER"
)

// ActivityLog is the audit trail of successful workflow actions.
type ActivityLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ActorID     uint           `gorm:"not null;index" json:"actorId"` // 0 = system
	ActorRole   string         `gorm:"not null;type:varchar(20)" json:"actorRole"`
	Action      string         `gorm:"not null;type:varchar(50);index" json:"action"`
	EntityType  string         `gorm:"type:varchar(50);index:idx_activity_entity" json:"entityType"`
	EntityID    uint           `gorm:"index:idx_activity_entity" json:"entityId"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Metadata    datatypes.JSON `json:"metadata"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
