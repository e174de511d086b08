package assistantService

import (
	"VistaVoice/internal/api/assistant"
	assistantRepository "VistaVoice/internal/api/assistant/repository"
	"VistaVoice/pkg/nlp"
	redisPkg "VistaVoice/pkg/redis"
	"VistaVoice/pkg/utils"
	"context"

	"github.com/sirupsen/logrus"
)

type IAssistantService interface {
	ProcessCommand(ctx context.Context, req assistant.CommandRequest) (*assistant.CommandResponse, error)
	NewSession(ctx context.Context, userType string) (*assistant.SessionResponse, error)
	EndSession(ctx context.Context, sessionID string) error

	GetHistory(ctx context.Context, userType string, page, limit int) (*assistant.HistoryResponse, error)
	GetTopPatterns(ctx context.Context, limit int) ([]assistant.PatternSummary, error)
	GetFeed(ctx context.Context, limit int) ([]assistant.FeedItem, error)
	GetStats(ctx context.Context) (*assistant.StatsResponse, error)

	ListResponses(ctx context.Context) ([]assistant.ResponseCatalogEntry, error)
	CreateResponse(ctx context.Context, req assistant.CreateResponseRequest) error

	TestClassification(ctx context.Context, req assistant.NLPTestRequest) (*nlp.ClassificationResult, error)
}

type assistantService struct {
	log           *logrus.Logger
	assistantRepo assistantRepository.Repository
	redisServer   redisPkg.IRedis
	utils         utils.IUtils
	classifier    nlp.IClassifier
	navigator     *navigator
}

func New(
	log *logrus.Logger,
	assistantRepo assistantRepository.Repository,
	redisServer redisPkg.IRedis,
	utils utils.IUtils,
	classifier nlp.IClassifier,
) IAssistantService {
	return &assistantService{
		log:           log,
		assistantRepo: assistantRepo,
		redisServer:   redisServer,
		utils:         utils,
		classifier:    classifier,
		navigator:     newNavigator(),
	}
}
