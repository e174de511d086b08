package main

import (
	"VistaVoice/internal/config"
	"VistaVoice/internal/voice"
	"VistaVoice/pkg/log"
	"VistaVoice/pkg/nlp"
	"VistaVoice/pkg/redis"
	websocketPkg "VistaVoice/pkg/websocket"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Fatalf("Error loading .env file: %v", err)
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()
	redisServer := redis.New()
	classifier := nlp.NewClassifier(logger)

	// The hub is the manager's microphone and speaker; the manager is
	// the hub's source of truth for who owns them.
	hub := websocketPkg.NewHub(logger)
	voiceManager := voice.NewManager(logger, hub, hub)
	hub.AttachManager(voiceManager)

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithDatabase(),
		config.WithRedisServer(redisServer),
		config.WithMiddleware(),
		config.WithUtils(),
		config.WithVoiceCore(voiceManager, hub, classifier),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")
}
