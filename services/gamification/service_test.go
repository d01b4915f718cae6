package gamification

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/klatt42/gifted-tudor/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB connects to the database named by the DB_* environment
// variables and migrates the gamification tables. Tests using it are
// integration tests and require a running PostgreSQL instance.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER_NAME", "postgres"),
		os.Getenv("DB_PASSWORD"),
		envOr("DB_NAME", "gifted_tudor_test"),
		envOr("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect to test database")

	require.NoError(t, db.AutoMigrate(
		&model.Family{},
		&model.Student{},
		&model.XPTransaction{},
	))

	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func createTestStudent(t *testing.T, db *gorm.DB) *model.Student {
	t.Helper()

	family := model.Family{Name: "Test Family"}
	require.NoError(t, db.Create(&family).Error)

	student := model.Student{
		FamilyID: family.ID,
		Name:     "Test Student",
		Grade:    "5",
	}
	require.NoError(t, db.Create(&student).Error)

	t.Cleanup(func() {
		db.Where("student_id = ?", student.ID).Delete(&model.XPTransaction{})
		db.Unscoped().Where("id = ?", student.ID).Delete(&model.Student{})
		db.Where("id = ?", family.ID).Delete(&model.Family{})
	})

	return &student
}

func TestAddXPAccumulatesAndLedgers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	student := createTestStudent(t, db)
	ctx := context.Background()

	updated, err := svc.AddXP(ctx, student.ID, 100, "lesson_completed")
	require.NoError(t, err)
	assert.Equal(t, 100, updated.XP)

	updated, err = svc.AddXP(ctx, student.ID, 50, "quiz_passed")
	require.NoError(t, err)
	assert.Equal(t, 150, updated.XP)
	assert.Equal(t, LevelExplorer, updated.Level)

	// Every award leaves a ledger row and the ledger folds to the counter.
	var count int64
	require.NoError(t, db.Model(&model.XPTransaction{}).
		Where("student_id = ?", student.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	total, err := svc.XPTotal(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 150, total)
}

func TestAddXPLevelTransition(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	student := createTestStudent(t, db)
	ctx := context.Background()

	updated, err := svc.AddXP(ctx, student.ID, 600, "unit_completed")
	require.NoError(t, err)
	assert.Equal(t, 600, updated.XP)
	assert.Equal(t, LevelLearner, updated.Level)
}

func TestAddXPUnknownStudent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	_, err := svc.AddXP(context.Background(), "00000000-0000-0000-0000-000000000000", 10, "lesson_completed")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestRecordActivityIdempotentWithinDay(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	student := createTestStudent(t, db)
	ctx := context.Background()
	now := time.Now()

	updated, err := svc.RecordActivity(ctx, student.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Streak)
	assert.Equal(t, 1, updated.LongestStreak)

	// Second activity the same day is a no-op.
	updated, err = svc.RecordActivity(ctx, student.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Streak)
}
