package model

import "time"

// MessageRole identifies the author of a tutor message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// TutorMessage is one turn in a session transcript. Messages are immutable
// once written; the transcript is append-only.
type TutorMessage struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	SessionID string      `gorm:"type:uuid;not null;index" json:"session_id"`
	Role      MessageRole `gorm:"type:varchar(20);not null" json:"role"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time   `json:"created_at"`

	// Relationships
	Session TutorSession `gorm:"foreignKey:SessionID" json:"-"`
}

// TableName specifies the table name for TutorMessage
func (TutorMessage) TableName() string {
	return "tutor_messages"
}
