package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/DBravy/connected-chatbot-sub000/app/config"
	"github.com/DBravy/connected-chatbot-sub000/app/service/conversation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/do"
)

type Server struct {
	cfg      *config.Config
	convSvc  *conversation.Service
	store    *conversation.MemoryStore
	validate *validator.Validate
	app      *fiber.App
}

type chatRequest struct {
	ConversationID string          `json:"conversationId" validate:"required"`
	Message        string          `json:"message" validate:"required"`
	Snapshot       json.RawMessage `json:"snapshot,omitempty"`
}

func New(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:      do.MustInvoke[*config.Config](di),
		convSvc:  do.MustInvoke[*conversation.Service](di),
		store:    do.MustInvoke[*conversation.MemoryStore](di),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := app.Group("/api")
	api.Post("/chat", s.handleChat)
	api.Get("/conversations/:id", s.handleGetConversation)
	api.Post("/conversations/:id/reset", s.handleReset)

	s.app = app

	return s, nil
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var snapshot *conversation.Snapshot
	if len(req.Snapshot) > 0 {
		snapshot = &conversation.Snapshot{}
		if err := json.Unmarshal(req.Snapshot, snapshot); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid snapshot")
		}
	}

	result, err := s.convSvc.HandleTurn(c.UserContext(), req.ConversationID, req.Message, snapshot)
	if err != nil {
		slog.Error("Turn handler failed", "conversation", req.ConversationID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to process message")
	}

	return c.JSON(result)
}

func (s *Server) handleGetConversation(c *fiber.Ctx) error {
	conv := s.store.GetOrCreate(c.Params("id"))

	return c.JSON(conversation.Export(conv))
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	conv := s.store.Reset(c.Params("id"))

	return c.JSON(conversation.Export(conv))
}

// Run serves HTTP until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- s.app.Listen(s.cfg.Server.Listen)
	}()

	select {
	case <-ctx.Done():
		return s.app.Shutdown()
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
