package tutor

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/klatt42/gifted-tudor/model"
	"github.com/klatt42/gifted-tudor/services/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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
		&model.TutorSession{},
		&model.TutorMessage{},
	))

	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func createTestStudent(t *testing.T, db *gorm.DB) (*model.Student, string) {
	t.Helper()

	family := model.Family{Name: "Test Family"}
	require.NoError(t, db.Create(&family).Error)

	student := model.Student{
		FamilyID: family.ID,
		Name:     "Test Student",
		Grade:    "6",
	}
	require.NoError(t, db.Create(&student).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM tutor_messages WHERE session_id IN (SELECT id FROM tutor_sessions WHERE student_id = ?)", student.ID)
		db.Where("student_id = ?", student.ID).Delete(&model.TutorSession{})
		db.Unscoped().Where("id = ?", student.ID).Delete(&model.Student{})
		db.Where("id = ?", family.ID).Delete(&model.Family{})
	})

	return &student, family.ID
}

// The user's message must be durable before generation starts: Prepare
// creates the session and persists the user turn without touching the
// generation backend at all.
func TestPrepareSavesUserMessageBeforeGeneration(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, llm.NewClient(""), "test-model")
	student, familyID := createTestStudent(t, db)
	ctx := context.Background()

	turn, err := svc.Prepare(ctx, familyID, ChatRequest{
		StudentID: student.ID,
		Message:   "What is a prime number?",
		Subject:   "math",
	})
	require.NoError(t, err)
	require.NotEmpty(t, turn.SessionID())

	var session model.TutorSession
	require.NoError(t, db.First(&session, "id = ?", turn.SessionID()).Error)
	assert.Equal(t, student.ID, session.StudentID)
	assert.Equal(t, "math", session.Subject)
	assert.Equal(t, "active", session.Status)
	assert.Equal(t, 1, session.MessageCount)

	var messages []model.TutorMessage
	require.NoError(t, db.Where("session_id = ?", turn.SessionID()).Find(&messages).Error)
	require.Len(t, messages, 1)
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, "What is a prime number?", messages[0].Content)

	// Generation fails (no credentials) and no assistant turn appears.
	_, err = svc.Stream(ctx, turn, func(string) error { return nil })
	assert.ErrorIs(t, err, llm.ErrNotConfigured)

	require.NoError(t, db.Where("session_id = ?", turn.SessionID()).Find(&messages).Error)
	assert.Len(t, messages, 1)
}

func TestPrepareReusesExistingSession(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, llm.NewClient(""), "test-model")
	student, familyID := createTestStudent(t, db)
	ctx := context.Background()

	first, err := svc.Prepare(ctx, familyID, ChatRequest{
		StudentID: student.ID,
		Message:   "first",
	})
	require.NoError(t, err)

	second, err := svc.Prepare(ctx, familyID, ChatRequest{
		StudentID: student.ID,
		SessionID: first.SessionID(),
		Message:   "second",
	})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID(), second.SessionID())

	messages, err := svc.GetMessages(ctx, familyID, first.SessionID())
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
}

func TestPrepareScopesToFamily(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, llm.NewClient(""), "test-model")
	student, _ := createTestStudent(t, db)

	_, err := svc.Prepare(context.Background(), "00000000-0000-0000-0000-000000000000", ChatRequest{
		StudentID: student.ID,
		Message:   "hello",
	})
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestGetMessagesUnknownSession(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, llm.NewClient(""), "test-model")
	_, familyID := createTestStudent(t, db)

	_, err := svc.GetMessages(context.Background(), familyID, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
