package tutor

import (
	"bufio"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/klatt42/gifted-tudor/services/llm"
	tutorsvc "github.com/klatt42/gifted-tudor/services/tutor"
	"github.com/klatt42/gifted-tudor/utils/middleware"
	"github.com/klatt42/gifted-tudor/utils/response"
	"github.com/klatt42/gifted-tudor/utils/validation"
	"gorm.io/gorm"
)

// TutorHandler handles tutor chat streaming and history retrieval
type TutorHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	service   *tutorsvc.Service
}

// NewTutorHandler creates a new tutor handler
func NewTutorHandler(db *gorm.DB, service *tutorsvc.Service) *TutorHandler {
	return &TutorHandler{
		db:        db,
		validator: validation.NewValidator(),
		service:   service,
	}
}

// ChatContext carries optional hints about what the student is working on
type ChatContext struct {
	CurrentTopic         string `json:"currentTopic"`
	GradeLevel           string `json:"gradeLevel"`
	DifficultyPreference string `json:"difficultyPreference"`
}

// HistoryMessage is one prior turn supplied by the client
type HistoryMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest represents a tutor chat request
type ChatRequest struct {
	StudentID           string           `json:"studentId" validate:"required"`
	SessionID           string           `json:"sessionId"`
	Message             string           `json:"message" validate:"required,min=1,max=10000"`
	Subject             string           `json:"subject"`
	Context             *ChatContext     `json:"context"`
	ConversationHistory []HistoryMessage `json:"conversationHistory" validate:"omitempty,dive"`
}

// Stream frames. The response body is a newline-delimited sequence of JSON
// objects: zero or more chunk frames followed by exactly one done or error
// frame.
type chunkFrame struct {
	Type    string `json:"type"` // chunk
	Content string `json:"content"`
}

type doneFrame struct {
	Type         string `json:"type"` // done
	SessionID    string `json:"sessionId"`
	FullResponse string `json:"fullResponse"`
}

type errorFrame struct {
	Type  string `json:"type"` // error
	Error string `json:"error"`
}

// Chat handles POST /tutor/chat
func (h *TutorHandler) Chat(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	if !h.service.Configured() {
		return response.ServiceUnavailable(c, "AI service not configured")
	}

	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.StudentID == "" || req.Message == "" {
		return response.BadRequest(c, "Missing required fields: studentId, message")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	famID := ""
	if user.FamilyID != nil {
		famID = *user.FamilyID
	}

	svcReq := tutorsvc.ChatRequest{
		StudentID: req.StudentID,
		SessionID: req.SessionID,
		Message:   req.Message,
		Subject:   req.Subject,
	}
	if req.Context != nil {
		svcReq.CurrentTopic = req.Context.CurrentTopic
		svcReq.GradeLevel = req.Context.GradeLevel
		svcReq.DifficultyPreference = req.Context.DifficultyPreference
	}
	for _, m := range req.ConversationHistory {
		svcReq.History = append(svcReq.History, llm.Message{Role: m.Role, Content: m.Content})
	}

	// Resolve the session and persist the user message before any stream
	// bytes go out, so these failures still map to plain HTTP statuses.
	turn, err := h.service.Prepare(c.Context(), famID, svcReq)
	if err != nil {
		switch {
		case errors.Is(err, tutorsvc.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, tutorsvc.ErrSessionNotFound):
			return response.NotFound(c, "Session not found")
		default:
			return response.InternalServerError(c, "Failed to process chat request")
		}
	}

	c.Set("Content-Type", "application/x-ndjson")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	ctx := c.Context()
	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		result, err := h.service.Stream(ctx, turn, func(chunk string) error {
			if err := writeFrame(w, chunkFrame{Type: "chunk", Content: chunk}); err != nil {
				return err
			}
			return w.Flush()
		})

		if err != nil {
			// Terminal error frame; chunks already sent are not retracted
			// and the partial assistant text is not persisted.
			writeFrame(w, errorFrame{Type: "error", Error: err.Error()})
			w.Flush()
			return
		}

		writeFrame(w, doneFrame{
			Type:         "done",
			SessionID:    result.SessionID,
			FullResponse: result.FullResponse,
		})
		w.Flush()
	})

	return nil
}

func writeFrame(w *bufio.Writer, frame interface{}) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// History handles GET /tutor/chat. With sessionId it returns that
// session's messages in order; with studentId it returns the 20 most
// recent sessions, newest first. Missing both is a 400.
func (h *TutorHandler) History(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	sessionID := c.Query("sessionId")
	studentID := c.Query("studentId")

	if sessionID == "" && studentID == "" {
		return response.BadRequest(c, "Provide sessionId or studentId")
	}

	famID := ""
	if user.FamilyID != nil {
		famID = *user.FamilyID
	}

	if sessionID != "" {
		messages, err := h.service.GetMessages(c.Context(), famID, sessionID)
		if err != nil {
			if errors.Is(err, tutorsvc.ErrSessionNotFound) {
				return response.NotFound(c, "Session not found")
			}
			return response.InternalServerError(c, "Failed to retrieve chat history")
		}
		return response.Success(c, fiber.Map{"messages": messages})
	}

	sessions, err := h.service.ListSessions(c.Context(), famID, studentID)
	if err != nil {
		if errors.Is(err, tutorsvc.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to retrieve chat history")
	}
	return response.Success(c, fiber.Map{"sessions": sessions})
}
