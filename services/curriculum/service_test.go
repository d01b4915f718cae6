package curriculum

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

// cannedGenerator returns fixed output without calling any provider.
type cannedGenerator struct {
	text string
	err  error
}

func (g cannedGenerator) Generate(ctx context.Context, req llm.Request) (*llm.Result, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &llm.Result{Text: g.text, InputTokens: 120, OutputTokens: 450}, nil
}

const cannedCurriculum = `{
	"topic": "Fractions in the Kitchen",
	"gradeLevel": "5",
	"difficulty": "standard",
	"overview": "A hands-on unit on fractions.",
	"learningObjectives": ["add fractions"],
	"lessonPlans": [{"title": "Halves and Quarters", "objective": "identify halves", "duration": "45 minutes"}],
	"totalDuration": "3 hours over 1 week"
}`

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
		&model.Lesson{},
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
		Grade:    "5",
	}
	require.NoError(t, db.Create(&student).Error)

	t.Cleanup(func() {
		db.Where("student_id = ?", student.ID).Delete(&model.Lesson{})
		db.Unscoped().Where("id = ?", student.ID).Delete(&model.Student{})
		db.Where("id = ?", family.ID).Delete(&model.Family{})
	})

	return &student, family.ID
}

func generateRequest(studentID string) GenerateRequest {
	return GenerateRequest{
		StudentID:            studentID,
		Subject:              "math",
		Grade:                "5",
		DifficultyPreference: model.DifficultyStandard,
		DurationWeeks:        1,
	}
}

func TestGenerateSavesDraftLesson(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, cannedGenerator{text: cannedCurriculum}, "test-model")
	student, familyID := createTestStudent(t, db)

	result, err := svc.Generate(context.Background(), familyID, generateRequest(student.ID))
	require.NoError(t, err)

	require.NotNil(t, result.Curriculum)
	assert.Equal(t, "Fractions in the Kitchen", result.Curriculum.Topic)
	assert.EqualValues(t, 120, result.InputTokens)
	assert.EqualValues(t, 450, result.OutputTokens)

	require.NotNil(t, result.SavedID)
	var lesson model.Lesson
	require.NoError(t, db.First(&lesson, "id = ?", *result.SavedID).Error)
	assert.Equal(t, student.ID, lesson.StudentID)
	assert.Equal(t, model.LessonStatusDraft, lesson.Status)
	assert.Equal(t, "claude-sonnet-4", lesson.GeneratedBy)
	assert.Equal(t, "Fractions in the Kitchen", lesson.Topic)
}

// A storage failure after a successful generation must not discard the
// content: the result still carries the curriculum and token usage, with
// SavedID left nil.
func TestGenerateSaveFailureStillReturnsCurriculum(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, cannedGenerator{text: cannedCurriculum}, "test-model")
	student, familyID := createTestStudent(t, db)

	// Make every lesson insert fail.
	require.NoError(t, db.Migrator().DropTable(&model.Lesson{}))
	t.Cleanup(func() {
		db.AutoMigrate(&model.Lesson{})
	})

	result, err := svc.Generate(context.Background(), familyID, generateRequest(student.ID))
	require.NoError(t, err)

	assert.Nil(t, result.SavedID)
	require.NotNil(t, result.Curriculum)
	assert.Equal(t, "Fractions in the Kitchen", result.Curriculum.Topic)
	assert.EqualValues(t, 120, result.InputTokens)
	assert.EqualValues(t, 450, result.OutputTokens)
}

func TestGenerateParseFailure(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, cannedGenerator{text: "I'm sorry, I can't produce a unit for that."}, "test-model")
	student, familyID := createTestStudent(t, db)

	_, err := svc.Generate(context.Background(), familyID, generateRequest(student.ID))
	assert.ErrorIs(t, err, ErrParse)
}

func TestGenerateUnwrapsFencedOutput(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, cannedGenerator{text: "```json\n" + cannedCurriculum + "\n```"}, "test-model")
	student, familyID := createTestStudent(t, db)

	result, err := svc.Generate(context.Background(), familyID, generateRequest(student.ID))
	require.NoError(t, err)
	assert.Equal(t, "Fractions in the Kitchen", result.Curriculum.Topic)
}

func TestGenerateScopesToFamily(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, cannedGenerator{text: cannedCurriculum}, "test-model")
	student, familyID := createTestStudent(t, db)

	_, err := svc.Generate(context.Background(), "00000000-0000-0000-0000-000000000000", generateRequest(student.ID))
	assert.ErrorIs(t, err, ErrStudentNotFound)

	// The generation backend error path also passes through untouched.
	failing := NewService(db, cannedGenerator{err: llm.ErrNotConfigured}, "test-model")
	_, err = failing.Generate(context.Background(), familyID, generateRequest(student.ID))
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}