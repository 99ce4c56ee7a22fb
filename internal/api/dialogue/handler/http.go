package dialogueHandler

import (
	dialogueService "SupportDesk/internal/api/dialogue/service"
	"SupportDesk/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type DialogueHandler struct {
	log             *logrus.Logger
	validator       *validator.Validate
	middleware      middleware.Middleware
	dialogueService dialogueService.IDialogueService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	dialogueService dialogueService.IDialogueService,
) *DialogueHandler {
	return &DialogueHandler{
		log:             log,
		validator:       validate,
		middleware:      middleware,
		dialogueService: dialogueService,
	}
}

func (h *DialogueHandler) Start(srv fiber.Router) {
	dialogue := srv.Group("/dialogue")

	dialogue.Post("/message", h.middleware.NewRateLimiter, h.HandleMessage)
	dialogue.Get("/history/:id", h.GetHistory)
	dialogue.Get("/similar", h.GetSimilarTickets)

	dialogue.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	dialogue.Get("/ws", websocket.New(h.ChatSocket))

	console := srv.Group("/console")

	console.Get("/mappings", h.middleware.NewTokenMiddleware, h.GetMappings)
	console.Post("/mappings", h.middleware.NewTokenMiddleware, h.CreateMapping)
	console.Put("/mappings/:id", h.middleware.NewTokenMiddleware, h.UpdateMapping)
	console.Delete("/mappings/:id", h.middleware.NewTokenMiddleware, h.DeleteMapping)
	console.Get("/submissions", h.middleware.NewTokenMiddleware, h.GetSubmissions)
	console.Post("/submissions/export", h.middleware.NewTokenMiddleware, h.ExportSubmissions)
}
