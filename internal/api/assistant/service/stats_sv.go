package assistantService

import (
	"VistaVoice/internal/api/assistant"
	"VistaVoice/internal/entity"
	contextPkg "VistaVoice/pkg/context"
	"VistaVoice/pkg/nlp"
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

const feedCacheTTL = 30 * time.Second

func (s *assistantService) GetHistory(ctx context.Context, userType string, page, limit int) (*assistant.HistoryResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repoClient, err := s.assistantRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * limit
	events, total, err := repoClient.Events.GetVoiceEventsByUserType(ctx, userType, limit, offset)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_type":  userType,
			"error":      err.Error(),
		}).Error("Failed to load command history")
		return nil, err
	}

	entries := make([]assistant.HistoryEntry, 0, len(events))
	for _, e := range events {
		entries = append(entries, assistant.HistoryEntry{
			ID:           e.ID,
			SessionID:    e.SessionID,
			UserType:     e.UserType,
			Transcript:   e.Transcript,
			Intent:       e.Intent,
			Sentiment:    e.Sentiment,
			Emotion:      e.Emotion,
			ResponseText: e.ResponseText,
			PageContext:  e.PageContext,
			CreatedAt:    e.CreatedAt,
		})
	}

	return &assistant.HistoryResponse{
		Entries: entries,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

func (s *assistantService) GetTopPatterns(ctx context.Context, limit int) ([]assistant.PatternSummary, error) {
	repoClient, err := s.assistantRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	patterns, err := repoClient.Patterns.GetTopPatterns(ctx, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]assistant.PatternSummary, 0, len(patterns))
	for _, p := range patterns {
		summaries = append(summaries, assistant.PatternSummary{
			ID:              p.ID,
			PatternType:     p.PatternType,
			PatternCategory: p.PatternCategory,
			PatternName:     p.PatternName,
			TriggerPhrases:  p.TriggerPhrases,
			OccurrenceCount: p.OccurrenceCount,
			LastUsedAt:      p.LastUsedAt,
		})
	}

	return summaries, nil
}

// GetFeed serves the recent feed from the redis cache when fresh,
// falling back to the database and repopulating the cache.
func (s *assistantService) GetFeed(ctx context.Context, limit int) ([]assistant.FeedItem, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if cached, err := s.redisServer.GetCachedFeed(ctx); err == nil && cached != "" {
		var items []assistant.FeedItem
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			if len(items) > limit {
				items = items[:limit]
			}
			return items, nil
		}
	}

	repoClient, err := s.assistantRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	events, err := repoClient.Feed.GetRecentFeed(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]assistant.FeedItem, 0, len(events))
	for _, e := range events {
		items = append(items, makeFeedItem(e))
	}

	if payload, err := json.Marshal(items); err == nil {
		if err := s.redisServer.CacheFeed(ctx, string(payload), feedCacheTTL); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to cache activity feed")
		}
	}

	return items, nil
}

func makeFeedItem(e entity.FeedEvent) assistant.FeedItem {
	icon := e.Icon
	if icon == "" {
		icon = feedIconFor(e.FeedType)
	}
	return assistant.FeedItem{
		ID:          e.ID,
		FeedType:    e.FeedType,
		Title:       e.Title,
		Description: e.Description,
		Icon:        icon,
		PageContext: e.PageContext,
		CreatedAt:   e.CreatedAt,
	}
}

func (s *assistantService) GetStats(ctx context.Context) (*assistant.StatsResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repoClient, err := s.assistantRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	totalCommands, err := repoClient.Events.CountVoiceEvents(ctx)
	if err != nil {
		return nil, err
	}

	totalPatterns, err := repoClient.Patterns.CountPatterns(ctx)
	if err != nil {
		return nil, err
	}

	totalFeed, err := repoClient.Feed.CountFeedEvents(ctx)
	if err != nil {
		return nil, err
	}

	sentiments, err := repoClient.Events.GetSentimentCounts(ctx)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to load sentiment tallies")
		sentiments = map[string]int{}
	}

	return &assistant.StatsResponse{
		TotalCommands:   totalCommands,
		TotalPatterns:   totalPatterns,
		TotalFeedEvents: totalFeed,
		SentimentCounts: sentiments,
	}, nil
}

func (s *assistantService) ListResponses(ctx context.Context) ([]assistant.ResponseCatalogEntry, error) {
	repoClient, err := s.assistantRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	responses, err := repoClient.Responses.ListResponses(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]assistant.ResponseCatalogEntry, 0, len(responses))
	for _, r := range responses {
		entries = append(entries, assistant.ResponseCatalogEntry{
			ID:            r.ID,
			TriggerType:   r.TriggerType,
			TriggerValue:  r.TriggerValue,
			UserType:      r.UserType,
			ResponseText:  r.ResponseText,
			ResponseTone:  r.ResponseTone,
			SpeakingSpeed: r.SpeakingSpeed,
			Priority:      r.Priority,
			IsActive:      r.IsActive,
			TimesUsed:     r.TimesUsed,
		})
	}

	return entries, nil
}

func (s *assistantService) CreateResponse(ctx context.Context, req assistant.CreateResponseRequest) error {
	requestID := contextPkg.GetRequestID(ctx)

	repoClient, err := s.assistantRepo.NewClient(false)
	if err != nil {
		return err
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return err
	}

	speed := req.SpeakingSpeed
	if speed <= 0 {
		speed = 1.0
	}

	entry := entity.TTSResponse{
		ID:            id,
		TriggerType:   req.TriggerType,
		TriggerValue:  req.TriggerValue,
		UserType:      req.UserType,
		ResponseText:  req.ResponseText,
		ResponseTone:  req.ResponseTone,
		SpeakingSpeed: speed,
		Priority:      req.Priority,
		IsActive:      true,
		TimesUsed:     0,
		CreatedAt:     time.Now(),
	}

	if err := repoClient.Responses.CreateResponse(ctx, entry); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create catalog response")
		return err
	}

	return nil
}

func (s *assistantService) TestClassification(ctx context.Context, req assistant.NLPTestRequest) (*nlp.ClassificationResult, error) {
	result := s.classifier.Classify(req.Text)
	return &result, nil
}
