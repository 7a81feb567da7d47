package api

import (
	"github.com/gofiber/fiber/v2"

	"rag/service"
	"rag/types"
)

type CheckHandler struct {
	svc            *service.Service
	embeddingModel string
	llmModel       string
}

func NewCheckHandler(svc *service.Service, embeddingModel, llmModel string) *CheckHandler {
	return &CheckHandler{
		svc:            svc,
		embeddingModel: embeddingModel,
		llmModel:       llmModel,
	}
}

func (h *CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}

// HandleHealth reports whether the vector store is reachable. A failing
// store degrades the status instead of erroring the probe.
func (h *CheckHandler) HandleHealth(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return c.JSON(types.HealthResponse{
			Status: "degraded",
			Error:  err.Error(),
		})
	}
	return c.JSON(types.HealthResponse{
		Status: "healthy",
		VectorStore: &types.CollectionInfo{
			Name:  stats.CollectionName,
			Count: stats.TotalChunks,
		},
	})
}

func (h *CheckHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(types.StatsResponse{
		TotalDocuments: stats.TotalDocuments,
		TotalChunks:    stats.TotalChunks,
		CollectionName: stats.CollectionName,
		EmbeddingModel: h.embeddingModel,
		LLMModel:       h.llmModel,
	})
}
