package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"rag/app/agent"
	"rag/app/api"
	"rag/chunker"
	"rag/config"
	"rag/extract"
	"rag/model"
	"rag/service"
	"rag/store"
)

// maxUploadSize caps multipart bodies at 10MB.
const maxUploadSize = 10 * 1024 * 1024

// Server owns the fiber app and every service instance behind it. All
// collaborators are built and initialized in New, before any traffic is
// accepted; handlers never construct or lazily initialize anything.
type Server struct {
	cfg    *config.Config
	app    *fiber.App
	logger *slog.Logger
	closer func() error
}

func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	var (
		vectors store.VectorStorer
		closer  func() error
	)
	switch cfg.VectorBackend {
	case "memory":
		vectors = store.NewMemoryStore(cfg.CollectionName, cfg.Embedding.Dimension)
	default:
		pg, err := store.NewPostgresStore(ctx, cfg.Postgres.ConnString(), cfg.CollectionName, cfg.Embedding.Dimension)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		vectors = pg
		closer = pg.Close
	}

	if err := vectors.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	splitter, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	svc := service.New(service.Params{
		Extractor: extract.NewExtractor(cfg.ConverterURL),
		Splitter:  splitter,
		Embedder:  model.NewOllamaEmbedder(cfg.Embedding.URL, cfg.Embedding.Model),
		Completer: agent.NewClient(cfg.LLM.URL, cfg.LLM.Model),
		Vectors:   vectors,
		Registry:  store.NewRegistry(),
		Company:   cfg.CompanyName,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: api.ErrorHandler,
		BodyLimit:    maxUploadSize,
	})

	var (
		checkHandler    = api.NewCheckHandler(svc, cfg.Embedding.Model, cfg.LLM.Model)
		chatHandler     = api.NewChatHandler(svc, cfg.TopK)
		documentHandler = api.NewDocumentHandler(svc, cfg.UploadDir)
		check           = app.Group("/check")
		apiGroup        = app.Group("/api")
		documents       = apiGroup.Group("/documents")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiGroup.Get("/health", checkHandler.HandleHealth)
	apiGroup.Get("/stats", checkHandler.HandleStats)
	apiGroup.Post("/chat", chatHandler.HandleChat)
	documents.Post("/upload", documentHandler.HandleUpload)
	documents.Get("", documentHandler.HandleList)
	documents.Get("/:id", documentHandler.HandleGet)
	documents.Delete("/:id", documentHandler.HandleDelete)

	return &Server{
		cfg:    cfg,
		app:    app,
		logger: slog.Default(),
		closer: closer,
	}, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting",
		"addr", s.cfg.ServerAddr,
		"vector_backend", s.cfg.VectorBackend,
		"collection", s.cfg.CollectionName)
	return s.app.Listen(s.cfg.ServerAddr)
}

func (s *Server) Stop() {
	if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
		s.logger.Error("error during shutdown", "error", err)
	}
	if s.closer != nil {
		if err := s.closer(); err != nil {
			s.logger.Error("error closing store", "error", err)
		}
	}
	s.logger.Info("server stopped")
}
