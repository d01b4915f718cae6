package tutor

import (
	"context"
	"errors"
	"time"

	"github.com/klatt42/gifted-tudor/model"
	"github.com/klatt42/gifted-tudor/services/llm"
	"gorm.io/gorm"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrSessionNotFound = errors.New("session not found")
)

const (
	maxTokens      = 1024
	streamTimeout  = 120 * time.Second
	recentSessions = 20
)

// ChatRequest is one tutoring turn.
type ChatRequest struct {
	StudentID            string
	SessionID            string
	Message              string
	Subject              string
	CurrentTopic         string
	GradeLevel           string
	DifficultyPreference string
	History              []llm.Message
}

// ChatResult is returned after the stream completes successfully.
type ChatResult struct {
	SessionID    string
	FullResponse string
}

// Service maintains tutor sessions and proxies the streaming generation.
type Service struct {
	db    *gorm.DB
	llm   *llm.Client
	model string
}

// NewService creates a new tutor service
func NewService(db *gorm.DB, llmClient *llm.Client, modelID string) *Service {
	return &Service{
		db:    db,
		llm:   llmClient,
		model: modelID,
	}
}

// Configured reports whether the generation backend has credentials
func (s *Service) Configured() bool {
	return s.llm.Configured()
}

// Turn is a prepared tutoring turn: session resolved, user message already
// durable. Created by Prepare, consumed by Stream.
type Turn struct {
	student *model.Student
	session *model.TutorSession
	req     ChatRequest
}

// SessionID returns the session this turn belongs to
func (t *Turn) SessionID() string {
	return t.session.ID
}

// Prepare resolves the student and session and saves the user message.
// The ordering is deliberate: the session is created eagerly when absent,
// and the user's message is durable before generation starts, so a crash
// mid-stream never loses the student's input. Errors here surface as
// normal HTTP responses since no stream bytes have been written yet.
func (s *Service) Prepare(ctx context.Context, familyID string, req ChatRequest) (*Turn, error) {
	var student model.Student
	if err := s.db.WithContext(ctx).
		Where("id = ? AND family_id = ?", req.StudentID, familyID).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	session, err := s.resolveSession(ctx, &student, req)
	if err != nil {
		return nil, err
	}

	userMsg := model.TutorMessage{
		SessionID: session.ID,
		Role:      model.RoleUser,
		Content:   req.Message,
	}
	if err := s.db.WithContext(ctx).Create(&userMsg).Error; err != nil {
		return nil, err
	}
	s.bumpSession(ctx, session.ID)

	return &Turn{
		student: &student,
		session: session,
		req:     req,
	}, nil
}

// Stream runs the generation for a prepared turn, forwarding fragments to
// onChunk as they arrive. The assistant text is saved only after the
// stream finishes cleanly; on a mid-stream failure the partial text is
// discarded and the transcript simply misses the assistant reply for this
// turn (at-most-once delivery for assistant turns).
func (s *Service) Stream(ctx context.Context, turn *Turn, onChunk func(chunk string) error) (*ChatResult, error) {
	student := turn.student
	req := turn.req

	difficulty := student.DifficultyPreference
	if difficulty == "" {
		difficulty = req.DifficultyPreference
	}
	grade := student.Grade
	if grade == "" {
		grade = req.GradeLevel
	}

	messages := append([]llm.Message{}, req.History...)
	messages = append(messages, llm.Message{Role: "user", Content: req.Message})

	genCtx, cancel := context.WithTimeout(ctx, streamTimeout)
	defer cancel()

	result, err := s.llm.Stream(genCtx, llm.Request{
		Model:     s.model,
		MaxTokens: maxTokens,
		System: BuildSystemPrompt(PromptContext{
			StudentName:          student.Name,
			GradeLevel:           grade,
			Subject:              req.Subject,
			CurrentTopic:         req.CurrentTopic,
			DifficultyPreference: difficulty,
		}),
		Messages: messages,
	}, onChunk)
	if err != nil {
		return nil, err
	}

	assistantMsg := model.TutorMessage{
		SessionID: turn.session.ID,
		Role:      model.RoleAssistant,
		Content:   result.Text,
	}
	if err := s.db.WithContext(ctx).Create(&assistantMsg).Error; err != nil {
		return nil, err
	}
	s.bumpSession(ctx, turn.session.ID)

	return &ChatResult{
		SessionID:    turn.session.ID,
		FullResponse: result.Text,
	}, nil
}

func (s *Service) resolveSession(ctx context.Context, student *model.Student, req ChatRequest) (*model.TutorSession, error) {
	if req.SessionID != "" {
		var session model.TutorSession
		err := s.db.WithContext(ctx).
			Where("id = ? AND student_id = ?", req.SessionID, student.ID).
			First(&session).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSessionNotFound
			}
			return nil, err
		}
		return &session, nil
	}

	session := model.TutorSession{
		StudentID: student.ID,
		Subject:   req.Subject,
		Status:    "active",
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// bumpSession updates the denormalized message counter. Failures are not
// fatal to the turn; the transcript itself is the source of truth.
func (s *Service) bumpSession(ctx context.Context, sessionID string) {
	now := time.Now()
	s.db.WithContext(ctx).
		Model(&model.TutorSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"message_count":   gorm.Expr("message_count + ?", 1),
			"last_message_at": &now,
		})
}

// GetMessages returns a session's transcript in chronological order,
// scoped to the caller's family.
func (s *Service) GetMessages(ctx context.Context, familyID, sessionID string) ([]model.TutorMessage, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.TutorSession{}).
		Joins("JOIN students ON students.id = tutor_sessions.student_id").
		Where("tutor_sessions.id = ? AND students.family_id = ?", sessionID, familyID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrSessionNotFound
	}

	var messages []model.TutorMessage
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// ListSessions returns the student's most recent sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, familyID, studentID string) ([]model.TutorSession, error) {
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

	var sessions []model.TutorSession
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Limit(recentSessions).
		Find(&sessions).Error
	return sessions, err
}
