package curriculum

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/klatt42/gifted-tudor/model"
	"github.com/klatt42/gifted-tudor/services/llm"
	"github.com/klatt42/gifted-tudor/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	// ErrParse means the generator returned text that does not contain the
	// expected JSON document. Callers get a generic failure; the raw text
	// stays in server logs only.
	ErrParse = errors.New("failed to parse curriculum response")
)

const (
	generatedByLabel  = "claude-sonnet-4"
	generationTimeout = 120 * time.Second
	maxTokens         = 4096
)

// GenerateRequest is a validated curriculum generation request.
type GenerateRequest struct {
	StudentID            string
	Subject              string
	Topic                string
	Grade                string
	DifficultyPreference string
	DurationWeeks        float64
	Interests            []string
}

// GenerateResult carries the generated document, the persisted row id when
// the save succeeded, and the provider's token accounting.
type GenerateResult struct {
	Curriculum   *model.CurriculumContent
	SavedID      *string
	InputTokens  int64
	OutputTokens int64
}

// Generator produces one completion for a prompt. *llm.Client satisfies
// this; tests substitute canned output.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (*llm.Result, error)
}

// Service turns generation requests into persisted draft lessons.
type Service struct {
	db    *gorm.DB
	llm   Generator
	model string
}

// NewService creates a new curriculum service
func NewService(db *gorm.DB, generator Generator, modelID string) *Service {
	return &Service{
		db:    db,
		llm:   generator,
		model: modelID,
	}
}

// Generate builds the prompt, calls the generator, parses the response and
// saves the document as a draft lesson. Persistence is best-effort: a save
// failure is logged and the generated content is still returned, with
// SavedID left nil. Generation cost must never be wasted by a secondary
// storage failure.
func (s *Service) Generate(ctx context.Context, familyID string, req GenerateRequest) (*GenerateResult, error) {
	// Authorization gate: the student must belong to the caller's family.
	var student model.Student
	if err := s.db.WithContext(ctx).
		Where("id = ? AND family_id = ?", req.StudentID, familyID).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	result, err := s.llm.Generate(genCtx, llm.Request{
		Model:     s.model,
		MaxTokens: maxTokens,
		Messages: []llm.Message{
			{Role: "user", Content: BuildPrompt(req)},
		},
	})
	if err != nil {
		return nil, err
	}

	var content model.CurriculumContent
	if err := utils.ExtractJSONTo(result.Text, &content); err != nil {
		log.Printf("[Curriculum] Failed to parse generator response: %v\nraw response: %s", err, result.Text)
		return nil, ErrParse
	}

	out := &GenerateResult{
		Curriculum:   &content,
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
	}

	if savedID, err := s.saveDraft(ctx, req, &content); err != nil {
		log.Printf("[Curriculum] Failed to save curriculum for student %s: %v", req.StudentID, err)
	} else {
		out.SavedID = &savedID
	}

	return out, nil
}

func (s *Service) saveDraft(ctx context.Context, req GenerateRequest, content *model.CurriculumContent) (string, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return "", err
	}

	lesson := model.Lesson{
		StudentID:   req.StudentID,
		Subject:     req.Subject,
		Topic:       content.Topic,
		GradeLevel:  req.Grade,
		Difficulty:  req.DifficultyPreference,
		Content:     datatypes.JSON(raw),
		GeneratedBy: generatedByLabel,
		Status:      model.LessonStatusDraft,
	}

	if err := s.db.WithContext(ctx).Create(&lesson).Error; err != nil {
		return "", err
	}
	return lesson.ID, nil
}

// ListLessons returns saved drafts for a family's student, newest first.
func (s *Service) ListLessons(ctx context.Context, familyID, studentID string) ([]model.Lesson, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("id = ? AND family_id = ?", studentID, familyID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrStudentNotFound
	}

	var lessons []model.Lesson
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&lessons).Error
	return lessons, err
}

// GetLesson fetches one lesson, scoped to the caller's family.
func (s *Service) GetLesson(ctx context.Context, familyID, lessonID string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := s.db.WithContext(ctx).
		Joins("JOIN students ON students.id = lessons.student_id").
		Where("lessons.id = ? AND students.family_id = ?", lessonID, familyID).
		First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &lesson, nil
}
