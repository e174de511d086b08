package assistantRepository

import (
	"VistaVoice/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		var err error
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Patterns:  &patternRepository{q: sqlExecutor, log: r.log},
		Responses: &responseRepository{q: sqlExecutor, log: r.log},
		Feed:      &feedRepository{q: sqlExecutor, log: r.log},
		Events:    &eventRepository{q: sqlExecutor, log: r.log},
		Commit:    commitFunc,
		Rollback:  rollbackFunc,
	}, nil
}

type Client struct {
	Patterns interface {
		GetPatternByTrigger(ctx context.Context, phrase string) (entity.LearnedPattern, error)
		CreatePattern(ctx context.Context, pattern entity.LearnedPattern) error
		ReinforcePattern(ctx context.Context, id string, userType string) error
		GetTopPatterns(ctx context.Context, limit int) ([]entity.LearnedPattern, error)
		CountPatterns(ctx context.Context) (int, error)
	}

	Responses interface {
		GetResponse(ctx context.Context, triggerType, triggerValue, userType string) (entity.TTSResponse, error)
		IncrementUsage(ctx context.Context, id string) error
		ListResponses(ctx context.Context) ([]entity.TTSResponse, error)
		CreateResponse(ctx context.Context, resp entity.TTSResponse) error
	}

	Feed interface {
		CreateFeedEvent(ctx context.Context, event entity.FeedEvent) error
		GetRecentFeed(ctx context.Context, limit int) ([]entity.FeedEvent, error)
		CountFeedEvents(ctx context.Context) (int, error)
	}

	Events interface {
		CreateVoiceEvent(ctx context.Context, event entity.VoiceEvent) error
		GetVoiceEventsByUserType(ctx context.Context, userType string, limit, offset int) ([]entity.VoiceEvent, int, error)
		CountVoiceEvents(ctx context.Context) (int, error)
		GetSentimentCounts(ctx context.Context) (map[string]int, error)
	}

	Commit   func() error
	Rollback func() error
}

type patternRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type responseRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type feedRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type eventRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
