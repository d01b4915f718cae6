package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TutorSession is a conversation between a student and the tutoring
// assistant. Created lazily on the first message when no session id is
// supplied.
type TutorSession struct {
	ID            string     `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID     string     `gorm:"type:uuid;not null;index" json:"student_id"`
	Subject       string     `gorm:"type:varchar(100);default:'general'" json:"subject"`
	Status        string     `gorm:"type:varchar(20);default:'active'" json:"status"` // active, archived
	MessageCount  int        `gorm:"default:0" json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relationships
	Student  Student        `gorm:"foreignKey:StudentID" json:"-"`
	Messages []TutorMessage `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// TableName specifies the table name for TutorSession
func (TutorSession) TableName() string {
	return "tutor_sessions"
}

func (s *TutorSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Subject == "" {
		s.Subject = "general"
	}
	return nil
}
