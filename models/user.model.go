package models

import (
	"strings"
	"time"
)

// Role of an account.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

// ParseRole accepts any casing of a known role.
func ParseRole(raw string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return r, true
	}
	return "", false
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"default:''" json:"firstName"`
	LastName  string    `gorm:"default:''" json:"lastName"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"type:varchar(20);default:'STUDENT';index" json:"role"`
	Sectors   []Sector  `gorm:"many2many:instructor_sectors;" json:"sectors,omitempty"`
	IsDeleted bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName names the student in the mails sent to reviewers.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// SectorIDs returns the ids of the assigned sectors.
func (u User) SectorIDs() []uint {
	ids := make([]uint, 0, len(u.Sectors))
	for _, s := range u.Sectors {
		ids = append(ids, s.ID)
	}
	return ids
}
