package gamification

import (
	"context"
	"errors"
	"time"

	"github.com/klatt42/gifted-tudor/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrStudentNotFound = errors.New("student not found")

// Service applies XP and streak transitions to students. All mutations run
// inside a transaction so the denormalized counters and the ledger cannot
// drift apart.
type Service struct {
	db *gorm.DB
}

// NewService creates a new gamification service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// AddXP credits (or debits, for negative amounts) xp to a student, appends
// the ledger entry, and recomputes the level. The xp update is a single
// atomic increment at the storage layer, so concurrent awards for the same
// student cannot lose updates.
func (s *Service) AddXP(ctx context.Context, studentID string, amount int, reason string) (*model.Student, error) {
	var student model.Student

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&student).
			Clauses(clause.Returning{}).
			Where("id = ?", studentID).
			UpdateColumn("xp", gorm.Expr("xp + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStudentNotFound
		}

		student.Level = LevelForXP(student.XP)
		if err := tx.Model(&model.Student{}).
			Where("id = ?", studentID).
			UpdateColumn("level", student.Level).Error; err != nil {
			return err
		}

		txn := model.XPTransaction{
			StudentID: studentID,
			Amount:    amount,
			Reason:    reason,
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}

	return &student, nil
}

// RecordActivity marks one qualifying activity for today in the student's
// timezone. The row is locked for the duration of the transition so two
// simultaneous activities on a day boundary cannot double-extend the
// streak.
func (s *Service) RecordActivity(ctx context.Context, studentID string, now time.Time) (*model.Student, error) {
	var student model.Student

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", studentID).
			First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}

		today := now.In(student.Location())
		next := NextStreak(StreakState{
			Streak:           student.Streak,
			LongestStreak:    student.LongestStreak,
			LastActivityDate: student.LastActivityDate,
		}, today)

		student.Streak = next.Streak
		student.LongestStreak = next.LongestStreak
		student.LastActivityDate = next.LastActivityDate

		return tx.Model(&model.Student{}).
			Where("id = ?", studentID).
			Updates(map[string]interface{}{
				"streak":             next.Streak,
				"longest_streak":     next.LongestStreak,
				"last_activity_date": next.LastActivityDate,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return &student, nil
}

// XPTotal folds the ledger for a single student. The nightly counter
// audit sweeps all students in one set-based query instead; this is the
// per-student equivalent.
func (s *Service) XPTotal(ctx context.Context, studentID string) (int, error) {
	var total *int
	err := s.db.WithContext(ctx).
		Model(&model.XPTransaction{}).
		Where("student_id = ?", studentID).
		Select("SUM(amount)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
