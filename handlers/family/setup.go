package family

import (
	"github.com/gofiber/fiber/v2"
	"github.com/klatt42/gifted-tudor/model"
	"github.com/klatt42/gifted-tudor/utils/middleware"
	"github.com/klatt42/gifted-tudor/utils/response"
	"gorm.io/gorm"
)

// FamilyHandler handles family setup and lookup
type FamilyHandler struct {
	db *gorm.DB
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(db *gorm.DB) *FamilyHandler {
	return &FamilyHandler{db: db}
}

// SetupRequest creates the caller's family
type SetupRequest struct {
	FamilyName string `json:"family_name" validate:"required,min=1"`
}

// Setup handles POST /setup. Creates a family and attaches the calling
// parent to it. A parent belongs to exactly one family.
func (h *FamilyHandler) Setup(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req SetupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.FamilyName == "" {
		return response.BadRequest(c, "Family name is required")
	}

	if user.FamilyID != nil {
		return response.Conflict(c, "Family already configured for this account")
	}

	family := model.Family{Name: req.FamilyName}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&family).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).
			Where("id = ?", user.ID).
			Update("family_id", family.ID).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create family")
	}

	return response.Created(c, family)
}

// GetFamily handles GET /family. Returns the caller's family with its
// students.
func (h *FamilyHandler) GetFamily(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	if user.FamilyID == nil {
		return response.NotFound(c, "No family configured")
	}

	var family model.Family
	if err := h.db.Preload("Students").
		First(&family, "id = ?", *user.FamilyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "No family configured")
		}
		return response.InternalServerError(c, "Failed to fetch family")
	}

	return response.Success(c, family)
}
