package student

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/klatt42/gifted-tudor/model"
	"github.com/klatt42/gifted-tudor/services/gamification"
	"github.com/klatt42/gifted-tudor/utils/cache"
	"github.com/klatt42/gifted-tudor/utils/middleware"
	"github.com/klatt42/gifted-tudor/utils/response"
	"github.com/klatt42/gifted-tudor/utils/validation"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const studentCacheTTL = 5 * time.Minute

// StudentHandler handles student CRUD and gamification endpoints
type StudentHandler struct {
	db           *gorm.DB
	validator    *validation.Validator
	gamification *gamification.Service
	cache        *cache.RedisCache // nil when Redis is unavailable
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(db *gorm.DB, gamificationService *gamification.Service, redisCache *cache.RedisCache) *StudentHandler {
	return &StudentHandler{
		db:           db,
		validator:    validation.NewValidator(),
		gamification: gamificationService,
		cache:        redisCache,
	}
}

// CreateStudentRequest represents the request to add a student
type CreateStudentRequest struct {
	Name                 string   `json:"name" validate:"required,min=1,max=100"`
	Grade                string   `json:"grade" validate:"required,max=50"`
	DifficultyPreference string   `json:"difficulty_preference" validate:"omitempty,oneof=standard advanced challenge"`
	Subjects             []string `json:"subjects" validate:"omitempty,dive,min=1"`
	Interests            []string `json:"interests" validate:"omitempty,dive,min=1"`
	DailyGoalMinutes     int      `json:"daily_goal_minutes" validate:"omitempty,gte=5,lte=480"`
	Avatar               string   `json:"avatar" validate:"omitempty,max=10"`
	Timezone             string   `json:"timezone" validate:"omitempty,max=64"`
}

// UpdateStudentRequest represents a partial settings update
type UpdateStudentRequest struct {
	Name                 *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Grade                *string  `json:"grade" validate:"omitempty,max=50"`
	DifficultyPreference *string  `json:"difficulty_preference" validate:"omitempty,oneof=standard advanced challenge"`
	Subjects             []string `json:"subjects" validate:"omitempty,dive,min=1"`
	Interests            []string `json:"interests" validate:"omitempty,dive,min=1"`
	DailyGoalMinutes     *int     `json:"daily_goal_minutes" validate:"omitempty,gte=5,lte=480"`
	Avatar               *string  `json:"avatar" validate:"omitempty,max=10"`
	Timezone             *string  `json:"timezone" validate:"omitempty,max=64"`
}

// AddXPRequest credits xp to a student. Negative amounts are penalties.
type AddXPRequest struct {
	Amount int    `json:"amount" validate:"required"`
	Reason string `json:"reason" validate:"required,min=1,max=255"`
}

func familyID(c *fiber.Ctx) (string, bool) {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil || user.FamilyID == nil {
		return "", false
	}
	return *user.FamilyID, true
}

func (h *StudentHandler) cacheKey(id string) string {
	return fmt.Sprintf("student:%s", id)
}

func (h *StudentHandler) invalidate(c *fiber.Ctx, id string) {
	if h.cache != nil {
		h.cache.Delete(c.Context(), h.cacheKey(id))
	}
}

// ListStudents handles GET /students
func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	famID, ok := familyID(c)
	if !ok {
		return response.Success(c, []model.Student{})
	}

	var students []model.Student
	if err := h.db.Where("family_id = ?", famID).
		Order("created_at ASC").
		Find(&students).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch students")
	}

	return response.Success(c, students)
}

// GetStudent handles GET /students/:id
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	famID, ok := familyID(c)
	if !ok {
		return response.NotFound(c, "Student not found")
	}
	id := c.Params("id")

	// Profile reads are hot; serve from cache when possible.
	if h.cache != nil {
		var cached model.Student
		if err := h.cache.GetJSON(c.Context(), h.cacheKey(id), &cached); err == nil && cached.FamilyID == famID {
			return response.Success(c, cached)
		}
	}

	var student model.Student
	if err := h.db.Where("id = ? AND family_id = ?", id, famID).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	if h.cache != nil {
		h.cache.SetJSON(c.Context(), h.cacheKey(id), student, studentCacheTTL)
	}

	return response.Success(c, student)
}

// CreateStudent handles POST /students
func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	famID, ok := familyID(c)
	if !ok {
		return response.BadRequest(c, "Family setup required before adding students")
	}

	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	difficulty := req.DifficultyPreference
	if difficulty == "" {
		difficulty = model.DifficultyStandard
	}

	student := model.Student{
		FamilyID:             famID,
		Name:                 req.Name,
		Grade:                req.Grade,
		DifficultyPreference: difficulty,
		Subjects:             pq.StringArray(req.Subjects),
		Interests:            pq.StringArray(req.Interests),
		DailyGoalMinutes:     req.DailyGoalMinutes,
		Avatar:               req.Avatar,
		Timezone:             req.Timezone,
		Level:                gamification.LevelExplorer,
	}
	if student.DailyGoalMinutes == 0 {
		student.DailyGoalMinutes = 60
	}
	if student.Avatar == "" {
		student.Avatar = "1"
	}
	if student.Timezone == "" {
		student.Timezone = "UTC"
	}

	if err := h.db.Create(&student).Error; err != nil {
		return response.InternalServerError(c, "Failed to create student")
	}

	return response.Created(c, student)
}

// UpdateStudent handles PATCH /students/:id
func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	famID, ok := familyID(c)
	if !ok {
		return response.NotFound(c, "Student not found")
	}
	id := c.Params("id")

	var req UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var student model.Student
	if err := h.db.Where("id = ? AND family_id = ?", id, famID).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Grade != nil {
		updates["grade"] = *req.Grade
	}
	if req.DifficultyPreference != nil {
		updates["difficulty_preference"] = *req.DifficultyPreference
	}
	if req.Subjects != nil {
		updates["subjects"] = pq.StringArray(req.Subjects)
	}
	if req.Interests != nil {
		updates["interests"] = pq.StringArray(req.Interests)
	}
	if req.DailyGoalMinutes != nil {
		updates["daily_goal_minutes"] = *req.DailyGoalMinutes
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Timezone != nil {
		updates["timezone"] = *req.Timezone
	}

	if len(updates) == 0 {
		return response.Success(c, student)
	}

	if err := h.db.Model(&student).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update student")
	}
	h.invalidate(c, id)

	return response.Success(c, student)
}

// DeleteStudent handles DELETE /students/:id
func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	famID, ok := familyID(c)
	if !ok {
		return response.NotFound(c, "Student not found")
	}
	id := c.Params("id")

	res := h.db.Where("id = ? AND family_id = ?", id, famID).
		Delete(&model.Student{})
	if res.Error != nil {
		return response.InternalServerError(c, "Failed to delete student")
	}
	if res.RowsAffected == 0 {
		return response.NotFound(c, "Student not found")
	}
	h.invalidate(c, id)

	return response.Success(c, fiber.Map{
		"message": "Student deleted successfully",
	})
}

// AddXP handles POST /students/:id/xp
func (h *StudentHandler) AddXP(c *fiber.Ctx) error {
	famID, ok := familyID(c)
	if !ok {
		return response.NotFound(c, "Student not found")
	}
	id := c.Params("id")

	var req AddXPRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if ok, err := h.ownsStudent(c, famID, id); err != nil {
		return response.InternalServerError(c, "Failed to fetch student")
	} else if !ok {
		return response.NotFound(c, "Student not found")
	}

	student, err := h.gamification.AddXP(c.Context(), id, req.Amount, req.Reason)
	if err != nil {
		if errors.Is(err, gamification.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to add XP")
	}
	h.invalidate(c, id)

	return response.Success(c, student)
}

// RecordActivity handles POST /students/:id/activity
func (h *StudentHandler) RecordActivity(c *fiber.Ctx) error {
	famID, ok := familyID(c)
	if !ok {
		return response.NotFound(c, "Student not found")
	}
	id := c.Params("id")

	if ok, err := h.ownsStudent(c, famID, id); err != nil {
		return response.InternalServerError(c, "Failed to fetch student")
	} else if !ok {
		return response.NotFound(c, "Student not found")
	}

	student, err := h.gamification.RecordActivity(c.Context(), id, time.Now())
	if err != nil {
		if errors.Is(err, gamification.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to record activity")
	}
	h.invalidate(c, id)

	return response.Success(c, student)
}

func (h *StudentHandler) ownsStudent(c *fiber.Ctx, famID, studentID string) (bool, error) {
	var count int64
	err := h.db.Model(&model.Student{}).
		Where("id = ? AND family_id = ?", studentID, famID).
		Count(&count).Error
	return count > 0, err
}
