package assistantHandler

import (
	assistantService "VistaVoice/internal/api/assistant/service"
	"VistaVoice/internal/middleware"
	"VistaVoice/internal/voice"
	websocketPkg "VistaVoice/pkg/websocket"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type AssistantHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	assistantService assistantService.IAssistantService
	voiceManager     voice.IManager
	hub              websocketPkg.IHub
	pauseTimeout     time.Duration
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	as assistantService.IAssistantService,
	voiceManager voice.IManager,
	hub websocketPkg.IHub,
) *AssistantHandler {
	var pauseTimeout time.Duration
	if ms, err := strconv.Atoi(os.Getenv("VOICE_PAUSE_TIMEOUT_MS")); err == nil && ms > 0 {
		pauseTimeout = time.Duration(ms) * time.Millisecond
	}

	return &AssistantHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		assistantService: as,
		voiceManager:     voiceManager,
		hub:              hub,
		pauseTimeout:     pauseTimeout,
	}
}

func (h *AssistantHandler) Start(srv fiber.Router) {
	assistant := srv.Group("/assistant")
	assistant.Use(h.middleware.NewRateLimiter)

	// Session issuing and the live stream are open; the browser widget
	// has no token before it signs in.
	assistant.Post("/session", h.StartSession)
	assistant.Get("/stream/:owner", h.requireWebSocketUpgrade, websocket.New(h.VoiceStream))

	assistant.Use(h.middleware.NewTokenMiddleware)

	assistant.Delete("/session/:id", h.EndSession)
	assistant.Post("/command", h.ProcessCommand)
	assistant.Get("/history", h.GetHistory)
	assistant.Get("/patterns", h.GetPatterns)
	assistant.Get("/feed", h.GetFeed)
	assistant.Get("/stats", h.GetStats)

	assistant.Get("/responses", h.ListResponses)
	assistant.Post("/responses", h.CreateResponse)

	nlp := assistant.Group("/nlp")
	nlp.Post("/test", h.TestClassification)
}

func (h *AssistantHandler) requireWebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
