package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"rag/service"
	"rag/types"
)

type ChatHandler struct {
	svc  *service.Service
	topK int
}

func NewChatHandler(svc *service.Service, topK int) *ChatHandler {
	return &ChatHandler{
		svc:  svc,
		topK: topK,
	}
}

// HandleChat answers a question against the document corpus.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var params types.ChatParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errs := types.Validate(&params); len(errs) > 0 {
		return types.NewValidationError(errs)
	}

	result, err := h.svc.Answer(c.UserContext(), params.Question, h.topK)
	if err != nil {
		return err
	}

	return c.JSON(types.ChatResponse{
		Answer:    result.Text,
		Sources:   result.Sources,
		Timestamp: time.Now(),
	})
}
