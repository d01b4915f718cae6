package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Family is the authorization scope for parents and students. A parent
// only ever sees students belonging to their own family.
type Family struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Users    []User    `gorm:"foreignKey:FamilyID;constraint:OnDelete:CASCADE" json:"-"`
	Students []Student `gorm:"foreignKey:FamilyID;constraint:OnDelete:CASCADE" json:"students,omitempty"`
}

// TableName specifies the table name for Family
func (Family) TableName() string {
	return "families"
}

func (f *Family) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
