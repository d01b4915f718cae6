package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lesson statuses
const (
	LessonStatusDraft    = "draft"
	LessonStatusApproved = "approved"
	LessonStatusArchived = "archived"
)

// Lesson is a persisted curriculum unit. Content holds the full
// CurriculumContent document as JSONB and is never partially updated;
// regeneration creates a new row.
type Lesson struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID   string         `gorm:"type:uuid;not null;index" json:"student_id"`
	Subject     string         `gorm:"type:varchar(100);not null" json:"subject"`
	Topic       string         `gorm:"type:varchar(255)" json:"topic"`
	GradeLevel  string         `gorm:"type:varchar(50)" json:"grade_level"`
	Difficulty  string         `gorm:"type:varchar(20)" json:"difficulty"`
	Content     datatypes.JSON `gorm:"type:jsonb" json:"content"`
	GeneratedBy string         `gorm:"type:varchar(100)" json:"generated_by"`
	Status      string         `gorm:"type:varchar(20);default:'draft'" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Relationships
	Student Student `gorm:"foreignKey:StudentID" json:"-"`
}

// TableName specifies the table name for Lesson
func (Lesson) TableName() string {
	return "lessons"
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
