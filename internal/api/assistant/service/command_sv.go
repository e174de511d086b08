package assistantService

import (
	"VistaVoice/internal/api/assistant"
	assistantRepository "VistaVoice/internal/api/assistant/repository"
	"VistaVoice/internal/entity"
	contextPkg "VistaVoice/pkg/context"
	"VistaVoice/pkg/nlp"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	sessionTTL     = 30 * time.Minute
	patternNameMax = 50

	fallbackResponseText = "I'm here to help. Could you say that again?"
)

var feedIcons = map[string]string{
	"voice_command": "🎤",
	"navigation":    "🧭",
	"learning":      "🧠",
	"system":        "⚙️",
	"error":         "⚠️",
}

const defaultFeedIcon = "📌"

func feedIconFor(feedType string) string {
	if icon, ok := feedIcons[feedType]; ok {
		return icon
	}
	return defaultFeedIcon
}

func feedTypeFor(intent nlp.Intent) string {
	switch intent {
	case nlp.IntentNavigation:
		return "navigation"
	case nlp.IntentSystemStop, nlp.IntentSystemBack, nlp.IntentSystemClose, nlp.IntentDevCommand:
		return "system"
	default:
		return "voice_command"
	}
}

// ProcessCommand runs the full utterance pipeline: classify, learn,
// select a spoken response, resolve the page directive, and record the
// feed and ledger entries. Learning and recording failures are logged
// and swallowed; a classified command always gets a response.
func (s *assistantService) ProcessCommand(ctx context.Context, req assistant.CommandRequest) (*assistant.CommandResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, assistant.ErrEmptyUtterance
	}

	classification := s.classifier.Classify(text)

	repoClient, err := s.assistantRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	pattern := s.learnPattern(ctx, repoClient, text, req.UserType, classification)
	response := s.selectResponse(ctx, repoClient, classification.Emotion, req.UserType)
	directive := s.navigator.resolve(req.SessionID, text, classification.Intent)

	s.recordActivity(ctx, repoClient, req, classification, response.Text, directive)

	if err := s.redisServer.TouchSession(ctx, req.SessionID, sessionTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": req.SessionID,
			"error":      err.Error(),
		}).Warn("Failed to refresh session activity")
	}

	return &assistant.CommandResponse{
		Classification: classification,
		Response:       response,
		Directive:      directive,
		Pattern:        pattern,
	}, nil
}

// learnPattern dedupes on the normalized phrase: a known trigger is
// reinforced, a new one becomes a fresh pattern. Storage failures are
// swallowed and reported as nil so the command still succeeds.
func (s *assistantService) learnPattern(
	ctx context.Context,
	repoClient assistantRepository.Client,
	text, userType string,
	classification nlp.ClassificationResult,
) *assistant.PatternResult {
	requestID := contextPkg.GetRequestID(ctx)

	phrase := strings.ToLower(strings.TrimSpace(text))
	if phrase == "" {
		return nil
	}

	existing, err := repoClient.Patterns.GetPatternByTrigger(ctx, phrase)
	if err == nil {
		if err := repoClient.Patterns.ReinforcePattern(ctx, existing.ID, userType); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"pattern_id": existing.ID,
				"error":      err.Error(),
			}).Warn("Failed to reinforce learned pattern")
			return nil
		}
		return &assistant.PatternResult{ID: existing.ID, IsNew: false}
	}

	if !errors.Is(err, assistant.ErrPatternNotFound) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Pattern lookup failed")
		return nil
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to generate pattern id")
		return nil
	}

	patternType := "command"
	if strings.HasPrefix(string(classification.Intent), "system") {
		patternType = "system"
	}

	name := text
	if runes := []rune(name); len(runes) > patternNameMax {
		name = string(runes[:patternNameMax])
	}

	now := time.Now()
	pattern := entity.LearnedPattern{
		ID:               id,
		PatternType:      patternType,
		PatternCategory:  string(classification.Emotion),
		PatternName:      name,
		TriggerPhrases:   []string{phrase},
		OccurrenceCount:  1,
		FirstSeenBy:      userType,
		LastReinforcedBy: userType,
		LastUsedAt:       now,
		CreatedAt:        now,
	}

	if err := repoClient.Patterns.CreatePattern(ctx, pattern); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to store learned pattern")
		return nil
	}

	return &assistant.PatternResult{ID: id, IsNew: true}
}

// selectResponse looks up the catalog by (emotion, user type) and falls
// back to a fixed neutral line when nothing matches or the lookup fails.
func (s *assistantService) selectResponse(
	ctx context.Context,
	repoClient assistantRepository.Client,
	emotion nlp.Emotion,
	userType string,
) assistant.SpokenResponse {
	requestID := contextPkg.GetRequestID(ctx)

	entry, err := repoClient.Responses.GetResponse(ctx, "emotion", string(emotion), userType)
	if err != nil {
		if !errors.Is(err, assistant.ErrResponseNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"emotion":    emotion,
				"error":      err.Error(),
			}).Warn("Response catalog lookup failed")
		}
		return assistant.SpokenResponse{Text: fallbackResponseText, Tone: "neutral", Speed: 1.0}
	}

	if err := repoClient.Responses.IncrementUsage(ctx, entry.ID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"response_id": entry.ID,
			"error":       err.Error(),
		}).Warn("Failed to bump response usage counter")
	}

	speed := entry.SpeakingSpeed
	if speed <= 0 {
		speed = 1.0
	}

	return assistant.SpokenResponse{
		Text:  entry.ResponseText,
		Tone:  entry.ResponseTone,
		Speed: speed,
	}
}

func (s *assistantService) recordActivity(
	ctx context.Context,
	repoClient assistantRepository.Client,
	req assistant.CommandRequest,
	classification nlp.ClassificationResult,
	responseText string,
	directive assistant.Directive,
) {
	requestID := contextPkg.GetRequestID(ctx)
	now := time.Now()

	feedType := feedTypeFor(classification.Intent)
	title := "Heard: " + req.Text
	description := responseText
	if directive.Action == "navigate" {
		title = "Navigated to " + directive.Label
		description = req.Text
	}

	if feedID, err := s.utils.NewULIDFromTimestamp(now); err == nil {
		feedEvent := entity.FeedEvent{
			ID:          feedID,
			FeedType:    feedType,
			Title:       title,
			Description: description,
			SessionID:   req.SessionID,
			UserType:    req.UserType,
			PageContext: req.PageContext,
			Icon:        feedIconFor(feedType),
			CreatedAt:   now,
		}
		if err := repoClient.Feed.CreateFeedEvent(ctx, feedEvent); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to append feed event")
		} else if err := s.redisServer.InvalidateFeed(ctx); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to invalidate feed cache")
		}
	}

	eventID, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return
	}
	voiceEvent := entity.VoiceEvent{
		ID:           eventID,
		SessionID:    req.SessionID,
		UserType:     req.UserType,
		Transcript:   req.Text,
		Intent:       string(classification.Intent),
		Sentiment:    string(classification.Sentiment),
		Emotion:      string(classification.Emotion),
		ResponseText: responseText,
		PageContext:  req.PageContext,
		CreatedAt:    now,
	}
	if err := repoClient.Events.CreateVoiceEvent(ctx, voiceEvent); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to record voice event")
	}
}
