package curriculum

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/klatt42/gifted-tudor/model"
	curriculumsvc "github.com/klatt42/gifted-tudor/services/curriculum"
	"github.com/klatt42/gifted-tudor/services/llm"
	"github.com/klatt42/gifted-tudor/utils/middleware"
	"github.com/klatt42/gifted-tudor/utils/response"
	"github.com/klatt42/gifted-tudor/utils/validation"
	"gorm.io/gorm"
)

// CurriculumHandler handles curriculum generation and lesson retrieval
type CurriculumHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	service   *curriculumsvc.Service
}

// NewCurriculumHandler creates a new curriculum handler
func NewCurriculumHandler(db *gorm.DB, service *curriculumsvc.Service) *CurriculumHandler {
	return &CurriculumHandler{
		db:        db,
		validator: validation.NewValidator(),
		service:   service,
	}
}

// GenerateRequest represents a curriculum generation request
type GenerateRequest struct {
	StudentID            string   `json:"studentId" validate:"required"`
	Subject              string   `json:"subject" validate:"required"`
	Topic                string   `json:"topic"`
	Grade                string   `json:"grade" validate:"required"`
	DifficultyPreference string   `json:"difficultyPreference" validate:"omitempty,oneof=standard advanced challenge"`
	Duration             float64  `json:"duration"` // weeks, default 1
	Interests            []string `json:"interests"`
}

// GenerateResponse is the success shape for curriculum generation. SavedID
// is absent when the best-effort save failed; the curriculum is returned
// either way.
type GenerateResponse struct {
	Success    bool                     `json:"success"`
	Curriculum *model.CurriculumContent `json:"curriculum"`
	SavedID    *string                  `json:"savedId,omitempty"`
	Usage      UsageInfo                `json:"usage"`
}

// UsageInfo reports the provider's token accounting
type UsageInfo struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
}

// Generate handles POST /curriculum/generate
func (h *CurriculumHandler) Generate(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.StudentID == "" || req.Subject == "" || req.Grade == "" {
		return response.BadRequest(c, "Missing required fields: studentId, subject, grade")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.DifficultyPreference == "" {
		req.DifficultyPreference = model.DifficultyStandard
	}

	famID := ""
	if user.FamilyID != nil {
		famID = *user.FamilyID
	}

	result, err := h.service.Generate(c.Context(), famID, curriculumsvc.GenerateRequest{
		StudentID:            req.StudentID,
		Subject:              req.Subject,
		Topic:                req.Topic,
		Grade:                req.Grade,
		DifficultyPreference: req.DifficultyPreference,
		DurationWeeks:        req.Duration,
		Interests:            req.Interests,
	})
	if err != nil {
		switch {
		case errors.Is(err, curriculumsvc.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, llm.ErrNotConfigured):
			return response.ServiceUnavailable(c, "AI service not configured")
		case errors.Is(err, curriculumsvc.ErrParse):
			return response.InternalServerError(c, "Failed to parse curriculum response")
		case llm.IsUpstreamError(err):
			// Pass the provider's status through to the caller
			return response.Error(c, llm.UpstreamStatus(err),
				fmt.Sprintf("AI API error: %v", err), "UPSTREAM_ERROR")
		default:
			return response.InternalServerError(c, "Failed to generate curriculum")
		}
	}

	return c.Status(fiber.StatusOK).JSON(GenerateResponse{
		Success:    true,
		Curriculum: result.Curriculum,
		SavedID:    result.SavedID,
		Usage: UsageInfo{
			InputTokens:  result.InputTokens,
			OutputTokens: result.OutputTokens,
		},
	})
}

// ListLessons handles GET /lessons?studentId=
func (h *CurriculumHandler) ListLessons(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	studentID := c.Query("studentId")
	if studentID == "" {
		return response.BadRequest(c, "studentId query parameter is required")
	}

	famID := ""
	if user.FamilyID != nil {
		famID = *user.FamilyID
	}

	lessons, err := h.service.ListLessons(c.Context(), famID, studentID)
	if err != nil {
		if errors.Is(err, curriculumsvc.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch lessons")
	}

	return response.Success(c, lessons)
}

// GetLesson handles GET /lessons/:id
func (h *CurriculumHandler) GetLesson(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	famID := ""
	if user.FamilyID != nil {
		famID = *user.FamilyID
	}

	lesson, err := h.service.GetLesson(c.Context(), famID, c.Params("id"))
	if err != nil {
		if errors.Is(err, curriculumsvc.ErrStudentNotFound) {
			return response.NotFound(c, "Lesson not found")
		}
		return response.InternalServerError(c, "Failed to fetch lesson")
	}

	return response.Success(c, lesson)
}
