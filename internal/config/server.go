package config

import (
	"VistaVoice/database/postgres"
	assistantHandler "VistaVoice/internal/api/assistant/handler"
	assistantRepository "VistaVoice/internal/api/assistant/repository"
	assistantService "VistaVoice/internal/api/assistant/service"
	"VistaVoice/internal/middleware"
	"VistaVoice/internal/voice"
	"VistaVoice/pkg/nlp"
	"VistaVoice/pkg/redis"
	"VistaVoice/pkg/utils"
	websocketPkg "VistaVoice/pkg/websocket"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	db           *sqlx.DB
	log          *logrus.Logger
	middleware   middleware.Middleware
	validator    *validator.Validate
	utils        utils.IUtils
	redisServer  redis.IRedis
	voiceManager voice.IManager
	voiceHub     websocketPkg.IHub
	classifier   nlp.IClassifier
	handlers     []handler
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

// WithVoiceCore installs the microphone arbiter, the websocket hub it
// speaks through, and the utterance classifier.
func WithVoiceCore(manager voice.IManager, hub websocketPkg.IHub, classifier nlp.IClassifier) ServerOption {
	return func(s *Server) error {
		s.voiceManager = manager
		s.voiceHub = hub
		s.classifier = classifier
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Assistant Domain
	assistantRepo := assistantRepository.New(s.db, s.log)
	assistantServices := assistantService.New(s.log, assistantRepo, s.redisServer, s.utils, s.classifier)
	assistantHandlers := assistantHandler.New(s.log, s.validator, s.middleware, assistantServices, s.voiceManager, s.voiceHub)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, assistantHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
