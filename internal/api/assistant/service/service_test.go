package assistantService

import (
	"VistaVoice/internal/api/assistant"
	assistantRepository "VistaVoice/internal/api/assistant/repository"
	"VistaVoice/internal/entity"
	"VistaVoice/pkg/nlp"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePatterns struct {
	existing     *entity.LearnedPattern
	lookupErr    error
	created      []entity.LearnedPattern
	createErr    error
	reinforced   []string
	reinforceErr error
	top          []entity.LearnedPattern
	count        int
}

func (f *fakePatterns) GetPatternByTrigger(_ context.Context, phrase string) (entity.LearnedPattern, error) {
	if f.lookupErr != nil {
		return entity.LearnedPattern{}, f.lookupErr
	}
	if f.existing != nil {
		return *f.existing, nil
	}
	return entity.LearnedPattern{}, assistant.ErrPatternNotFound
}

func (f *fakePatterns) CreatePattern(_ context.Context, pattern entity.LearnedPattern) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, pattern)
	return nil
}

func (f *fakePatterns) ReinforcePattern(_ context.Context, id string, _ string) error {
	if f.reinforceErr != nil {
		return f.reinforceErr
	}
	f.reinforced = append(f.reinforced, id)
	return nil
}

func (f *fakePatterns) GetTopPatterns(_ context.Context, limit int) ([]entity.LearnedPattern, error) {
	if limit < len(f.top) {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func (f *fakePatterns) CountPatterns(_ context.Context) (int, error) {
	return f.count, nil
}

type fakeResponses struct {
	entry      *entity.TTSResponse
	lookupErr  error
	usageBumps []string
	list       []entity.TTSResponse
	created    []entity.TTSResponse
}

func (f *fakeResponses) GetResponse(_ context.Context, _, _, _ string) (entity.TTSResponse, error) {
	if f.lookupErr != nil {
		return entity.TTSResponse{}, f.lookupErr
	}
	if f.entry != nil {
		return *f.entry, nil
	}
	return entity.TTSResponse{}, assistant.ErrResponseNotFound
}

func (f *fakeResponses) IncrementUsage(_ context.Context, id string) error {
	f.usageBumps = append(f.usageBumps, id)
	return nil
}

func (f *fakeResponses) ListResponses(_ context.Context) ([]entity.TTSResponse, error) {
	return f.list, nil
}

func (f *fakeResponses) CreateResponse(_ context.Context, resp entity.TTSResponse) error {
	f.created = append(f.created, resp)
	return nil
}

type fakeFeed struct {
	events    []entity.FeedEvent
	createErr error
	recent    []entity.FeedEvent
	count     int
}

func (f *fakeFeed) CreateFeedEvent(_ context.Context, event entity.FeedEvent) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeFeed) GetRecentFeed(_ context.Context, _ int) ([]entity.FeedEvent, error) {
	return f.recent, nil
}

func (f *fakeFeed) CountFeedEvents(_ context.Context) (int, error) {
	return f.count, nil
}

type fakeEvents struct {
	recorded      []entity.VoiceEvent
	byUser        []entity.VoiceEvent
	total         int
	count         int
	sentiments    map[string]int
	sentimentsErr error
}

func (f *fakeEvents) CreateVoiceEvent(_ context.Context, event entity.VoiceEvent) error {
	f.recorded = append(f.recorded, event)
	return nil
}

func (f *fakeEvents) GetVoiceEventsByUserType(_ context.Context, _ string, _, _ int) ([]entity.VoiceEvent, int, error) {
	return f.byUser, f.total, nil
}

func (f *fakeEvents) CountVoiceEvents(_ context.Context) (int, error) {
	return f.count, nil
}

func (f *fakeEvents) GetSentimentCounts(_ context.Context) (map[string]int, error) {
	if f.sentimentsErr != nil {
		return nil, f.sentimentsErr
	}
	return f.sentiments, nil
}

type fakeRepo struct {
	patterns  *fakePatterns
	responses *fakeResponses
	feed      *fakeFeed
	events    *fakeEvents
	clientErr error
}

func (f *fakeRepo) NewClient(_ bool) (assistantRepository.Client, error) {
	if f.clientErr != nil {
		return assistantRepository.Client{}, f.clientErr
	}
	return assistantRepository.Client{
		Patterns:  f.patterns,
		Responses: f.responses,
		Feed:      f.feed,
		Events:    f.events,
		Commit:    func() error { return nil },
		Rollback:  func() error { return nil },
	}, nil
}

type fakeRedis struct {
	touched      []string
	dropped      []string
	touchErr     error
	cached       string
	cacheErr     error
	invalidated  int
	cachePayload string
}

func (f *fakeRedis) TouchSession(_ context.Context, sessionID string, _ time.Duration) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched = append(f.touched, sessionID)
	return nil
}

func (f *fakeRedis) SessionAlive(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (f *fakeRedis) DropSession(_ context.Context, sessionID string) error {
	f.dropped = append(f.dropped, sessionID)
	return nil
}

func (f *fakeRedis) CacheFeed(_ context.Context, payload string, _ time.Duration) error {
	if f.cacheErr != nil {
		return f.cacheErr
	}
	f.cachePayload = payload
	return nil
}

func (f *fakeRedis) GetCachedFeed(_ context.Context) (string, error) {
	if f.cached == "" {
		return "", errors.New("redis: nil")
	}
	return f.cached, nil
}

func (f *fakeRedis) InvalidateFeed(_ context.Context) error {
	f.invalidated++
	return nil
}

type fakeUtils struct {
	n   int
	err error
}

func (f *fakeUtils) NewULIDFromTimestamp(_ time.Time) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.n++
	return fmt.Sprintf("01TESTULID%016d", f.n), nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newServiceFixture() (*fakeRepo, *fakeRedis, IAssistantService) {
	repo := &fakeRepo{
		patterns:  &fakePatterns{},
		responses: &fakeResponses{},
		feed:      &fakeFeed{},
		events:    &fakeEvents{},
	}
	redis := &fakeRedis{}
	svc := New(testLogger(), repo, redis, &fakeUtils{}, nlp.NewClassifier(testLogger()))
	return repo, redis, svc
}

func TestProcessCommandCreatesNewPattern(t *testing.T) {
	repo, redis, svc := newServiceFixture()

	result, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:      "Find Me A Plumber",
		UserType:  "buyer",
		SessionID: "sess-1",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Pattern)

	assert.True(t, result.Pattern.IsNew)
	require.Len(t, repo.patterns.created, 1)

	created := repo.patterns.created[0]
	assert.Equal(t, []string{"find me a plumber"}, created.TriggerPhrases)
	assert.Equal(t, 1, created.OccurrenceCount)
	assert.Equal(t, "buyer", created.FirstSeenBy)
	assert.Equal(t, "command", created.PatternType)

	assert.Equal(t, []string{"sess-1"}, redis.touched)
}

func TestProcessCommandReinforcesKnownPattern(t *testing.T) {
	repo, _, svc := newServiceFixture()
	repo.patterns.existing = &entity.LearnedPattern{ID: "pat-1", OccurrenceCount: 3}

	result, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:     "find me a plumber",
		UserType: "vendor",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Pattern)

	assert.False(t, result.Pattern.IsNew)
	assert.Equal(t, "pat-1", result.Pattern.ID)
	assert.Equal(t, []string{"pat-1"}, repo.patterns.reinforced)
	assert.Empty(t, repo.patterns.created)
}

func TestProcessCommandSwallowsLearningFailure(t *testing.T) {
	repo, _, svc := newServiceFixture()
	repo.patterns.createErr = errors.New("db down")

	result, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:     "hello there",
		UserType: "guest",
	})
	require.NoError(t, err)

	assert.Nil(t, result.Pattern)
	assert.NotEmpty(t, result.Response.Text)
}

func TestProcessCommandTruncatesPatternNameOnRunes(t *testing.T) {
	repo, _, svc := newServiceFixture()

	text := strings.Repeat("née ", 20)
	_, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:     text,
		UserType: "guest",
	})
	require.NoError(t, err)

	require.Len(t, repo.patterns.created, 1)
	name := repo.patterns.created[0].PatternName
	assert.True(t, utf8.ValidString(name))
	assert.Len(t, []rune(name), patternNameMax)
}

func TestProcessCommandSystemPatternType(t *testing.T) {
	repo, _, svc := newServiceFixture()

	_, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:     "stop talking",
		UserType: "guest",
	})
	require.NoError(t, err)

	require.Len(t, repo.patterns.created, 1)
	assert.Equal(t, "system", repo.patterns.created[0].PatternType)
}

func TestProcessCommandFallsBackToNeutralResponse(t *testing.T) {
	_, _, svc := newServiceFixture()

	result, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:     "what is a mortgage",
		UserType: "guest",
	})
	require.NoError(t, err)

	assert.Equal(t, fallbackResponseText, result.Response.Text)
	assert.Equal(t, "neutral", result.Response.Tone)
	assert.Equal(t, 1.0, result.Response.Speed)
}

func TestProcessCommandUsesCatalogResponse(t *testing.T) {
	repo, _, svc := newServiceFixture()
	repo.responses.entry = &entity.TTSResponse{
		ID:           "resp-1",
		ResponseText: "Happy to help!",
		ResponseTone: "warm",
	}

	result, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:     "thank you so much!",
		UserType: "buyer",
	})
	require.NoError(t, err)

	assert.Equal(t, "Happy to help!", result.Response.Text)
	assert.Equal(t, "warm", result.Response.Tone)
	assert.Equal(t, 1.0, result.Response.Speed)
	assert.Equal(t, []string{"resp-1"}, repo.responses.usageBumps)
}

func TestProcessCommandNavigationDirective(t *testing.T) {
	repo, redis, svc := newServiceFixture()

	result, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:      "go to listings",
		UserType:  "buyer",
		SessionID: "sess-nav",
	})
	require.NoError(t, err)

	assert.Equal(t, "navigate", result.Directive.Action)
	assert.Equal(t, "/listings", result.Directive.Route)
	assert.Equal(t, "Listings", result.Directive.Label)

	require.Len(t, repo.feed.events, 1)
	assert.Equal(t, "Navigated to Listings", repo.feed.events[0].Title)
	assert.Equal(t, "navigation", repo.feed.events[0].FeedType)
	assert.Equal(t, "🧭", repo.feed.events[0].Icon)
	assert.Equal(t, 1, redis.invalidated)
}

func TestProcessCommandBackAtSeedDoesNothing(t *testing.T) {
	_, _, svc := newServiceFixture()

	result, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:      "go back",
		UserType:  "guest",
		SessionID: "sess-seed",
	})
	require.NoError(t, err)

	assert.Equal(t, "none", result.Directive.Action)
}

func TestProcessCommandBackAfterNavigate(t *testing.T) {
	_, _, svc := newServiceFixture()
	sessionID := "sess-back"

	_, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:      "open the dashboard",
		UserType:  "vendor",
		SessionID: sessionID,
	})
	require.NoError(t, err)

	result, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:      "go back",
		UserType:  "vendor",
		SessionID: sessionID,
	})
	require.NoError(t, err)

	assert.Equal(t, "back", result.Directive.Action)
	assert.Equal(t, "/", result.Directive.Route)
	assert.Equal(t, "Home", result.Directive.Label)
}

func TestProcessCommandRecordsVoiceEvent(t *testing.T) {
	repo, _, svc := newServiceFixture()

	_, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:        "thank you",
		UserType:    "buyer",
		SessionID:   "sess-ev",
		PageContext: "/listings",
	})
	require.NoError(t, err)

	require.Len(t, repo.events.recorded, 1)
	recorded := repo.events.recorded[0]
	assert.Equal(t, "thank you", recorded.Transcript)
	assert.Equal(t, "positive", recorded.Sentiment)
	assert.Equal(t, "gratitude", recorded.Emotion)
	assert.Equal(t, "/listings", recorded.PageContext)
}

func TestProcessCommandEmptyUtterance(t *testing.T) {
	_, _, svc := newServiceFixture()

	_, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:     "   ",
		UserType: "guest",
	})
	assert.ErrorIs(t, err, assistant.ErrEmptyUtterance)
}

func TestNavigatorResetDirective(t *testing.T) {
	nav := newNavigator()
	nav.resolve("s", "open listings", nlp.IntentNavigation)

	directive := nav.resolve("s", "close this", nlp.IntentSystemClose)
	assert.Equal(t, "reset", directive.Action)
	assert.Equal(t, "/", directive.Route)

	directive = nav.resolve("s", "go back", nlp.IntentSystemBack)
	assert.Equal(t, "none", directive.Action)
}

func TestNavigatorStopDirective(t *testing.T) {
	nav := newNavigator()
	directive := nav.resolve("s", "stop", nlp.IntentSystemStop)
	assert.Equal(t, "stop", directive.Action)
}

func TestNavigatorUnknownDestination(t *testing.T) {
	nav := newNavigator()
	directive := nav.resolve("s", "go to the moon", nlp.IntentNavigation)
	assert.Equal(t, "none", directive.Action)
}

func TestEndSessionForgetsNavigationStack(t *testing.T) {
	_, redis, svc := newServiceFixture()
	sessionID := "sess-end"

	_, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:      "open listings",
		UserType:  "buyer",
		SessionID: sessionID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.EndSession(context.Background(), sessionID))
	assert.Equal(t, []string{sessionID}, redis.dropped)

	// A fresh stack starts back at the home seed.
	result, err := svc.ProcessCommand(context.Background(), assistant.CommandRequest{
		Text:      "go back",
		UserType:  "buyer",
		SessionID: sessionID,
	})
	require.NoError(t, err)
	assert.Equal(t, "none", result.Directive.Action)
}

func TestGetFeedServesFromCache(t *testing.T) {
	repo, redis, svc := newServiceFixture()
	redis.cached = `[{"id":"f1","feed_type":"voice_command","title":"Heard: hi","icon":"🎤"},{"id":"f2","feed_type":"system","title":"Heard: stop","icon":"⚙️"}]`
	repo.feed.recent = []entity.FeedEvent{{ID: "db-only"}}

	items, err := svc.GetFeed(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "f1", items[0].ID)
}

func TestGetFeedFallsBackToDatabase(t *testing.T) {
	repo, redis, svc := newServiceFixture()
	repo.feed.recent = []entity.FeedEvent{
		{ID: "f1", FeedType: "voice_command", Title: "Heard: hi"},
	}

	items, err := svc.GetFeed(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "🎤", items[0].Icon)
	assert.NotEmpty(t, redis.cachePayload)
}

func TestGetStatsSwallowsSentimentFailure(t *testing.T) {
	repo, _, svc := newServiceFixture()
	repo.events.count = 12
	repo.patterns.count = 4
	repo.feed.count = 7
	repo.events.sentimentsErr = errors.New("db down")

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, stats.TotalCommands)
	assert.Equal(t, 4, stats.TotalPatterns)
	assert.Equal(t, 7, stats.TotalFeedEvents)
	assert.Empty(t, stats.SentimentCounts)
}

func TestNewSessionTouchesRedis(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	_, redis, svc := newServiceFixture()

	result, err := svc.NewSession(context.Background(), "guest")
	require.NoError(t, err)

	assert.NotEmpty(t, result.SessionID)
	assert.NotEmpty(t, result.AccessToken)
	assert.Greater(t, result.ExpiresAt, time.Now().Unix())
	assert.Equal(t, []string{result.SessionID}, redis.touched)
}

func TestNewSessionSurvivesRedisFailure(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	_, redis, svc := newServiceFixture()
	redis.touchErr = errors.New("redis down")

	result, err := svc.NewSession(context.Background(), "buyer")
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)
}
