package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Difficulty preference for generated material
const (
	DifficultyStandard  = "standard"
	DifficultyAdvanced  = "advanced"
	DifficultyChallenge = "challenge"
)

// Student is the aggregate root for gamification. The level column is
// denormalized from xp and must always equal LevelForXP(xp); the xp column
// is itself a denormalized running total of the xp_transactions ledger.
type Student struct {
	ID                   string         `gorm:"type:uuid;primaryKey" json:"id"`
	FamilyID             string         `gorm:"type:uuid;not null;index" json:"family_id"`
	Name                 string         `gorm:"not null" json:"name"`
	Grade                string         `gorm:"type:varchar(50);not null" json:"grade"`
	DifficultyPreference string         `gorm:"type:varchar(20);default:'standard'" json:"difficulty_preference"`
	XP                   int            `gorm:"default:0" json:"xp"`
	Level                string         `gorm:"type:varchar(20);default:'Explorer'" json:"level"`
	Streak               int            `gorm:"default:0" json:"streak"`
	LongestStreak        int            `gorm:"default:0" json:"longest_streak"`
	LastActivityDate     *time.Time     `gorm:"type:date" json:"last_activity_date,omitempty"`
	Subjects             pq.StringArray `gorm:"type:text[]" json:"subjects"`
	Interests            pq.StringArray `gorm:"type:text[]" json:"interests"`
	DailyGoalMinutes     int            `gorm:"default:60" json:"daily_goal_minutes"`
	Avatar               string         `gorm:"type:varchar(10);default:'1'" json:"avatar"`
	Timezone             string         `gorm:"type:varchar(64);default:'UTC'" json:"timezone"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Family         Family          `gorm:"foreignKey:FamilyID" json:"-"`
	XPTransactions []XPTransaction `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Lessons        []Lesson        `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	TutorSessions  []TutorSession  `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Student
func (Student) TableName() string {
	return "students"
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if len(s.Subjects) == 0 {
		s.Subjects = pq.StringArray{"math", "ela"}
	}
	return nil
}

// Location resolves the student's effective timezone, falling back to UTC
// when the stored name is empty or unknown. Streak day-boundaries are
// computed in this location.
func (s *Student) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
