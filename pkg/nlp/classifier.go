package nlp

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Keyword buckets checked in priority order: aggressive beats negative
// beats positive. A single aggressive marker colors the whole utterance.
var (
	aggressiveWords = []string{
		"stupid", "idiot", "hate", "damn", "shut up", "useless",
		"garbage", "terrible", "worst",
	}
	negativeWords = []string{
		"bad", "wrong", "no", "problem", "error", "broken",
		"fail", "ugly", "annoying", "slow",
	}
	positiveWords = []string{
		"great", "awesome", "love", "perfect", "amazing", "excellent",
		"good", "thanks", "thank", "beautiful", "nice", "yes",
	}

	greetingPrefixes = []string{
		"hi", "hello", "hey", "good morning", "good afternoon", "good evening",
	}

	navigationPrefixes = []string{"open", "go to", "show", "navigate"}
	queryPrefixes      = []string{"what", "how", "why", "tell"}
	stopPrefixes       = []string{"stop", "pause"}
	closePrefixes      = []string{"close", "exit", "home"}
)

type classifier struct {
	log *logrus.Logger
}

func NewClassifier(log *logrus.Logger) IClassifier {
	return &classifier{log: log}
}

func (c *classifier) Classify(text string) ClassificationResult {
	lower := strings.ToLower(strings.TrimSpace(text))

	sentiment := classifySentiment(lower)
	emotion := classifyEmotion(lower, sentiment)
	intent := classifyIntent(lower)

	result := ClassificationResult{
		Sentiment:       sentiment,
		Emotion:         emotion,
		EmpathyScore:    empathyFor(emotion),
		AggressionLevel: aggressionFor(sentiment),
		PolitenessScore: politenessFor(lower),
		Intent:          intent,
		Tone:            classifyTone(lower),
	}

	c.log.WithFields(logrus.Fields{
		"sentiment": result.Sentiment,
		"emotion":   result.Emotion,
		"intent":    result.Intent,
		"tone":      result.Tone,
	}).Debug("Utterance classified")

	return result
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(text string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

func classifySentiment(lower string) Sentiment {
	switch {
	case containsAny(lower, aggressiveWords):
		return SentimentAggressive
	case containsAny(lower, negativeWords):
		return SentimentNegative
	case containsAny(lower, positiveWords):
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}

func classifyEmotion(lower string, sentiment Sentiment) Emotion {
	emotion := EmotionCalm
	switch sentiment {
	case SentimentAggressive:
		emotion = EmotionAnger
	case SentimentNegative:
		emotion = EmotionFrustration
	case SentimentPositive:
		emotion = EmotionHappy
	}

	// Conversational markers refine the sentiment-derived emotion;
	// later checks win so "thanks for the help" lands on gratitude.
	if hasAnyPrefix(lower, greetingPrefixes) {
		emotion = EmotionGreeting
	}
	if strings.HasSuffix(lower, "bye") || strings.Contains(lower, "goodbye") {
		emotion = EmotionFarewell
	}
	if strings.Contains(lower, "help") {
		emotion = EmotionSeekingHelp
	}
	if strings.Contains(lower, "thank") {
		emotion = EmotionGratitude
	}

	return emotion
}

func classifyIntent(lower string) Intent {
	switch {
	case hasAnyPrefix(lower, navigationPrefixes):
		return IntentNavigation
	case hasAnyPrefix(lower, queryPrefixes):
		return IntentQuery
	case hasAnyPrefix(lower, stopPrefixes):
		return IntentSystemStop
	case strings.Contains(lower, "go back") || strings.HasPrefix(lower, "back"):
		return IntentSystemBack
	case hasAnyPrefix(lower, closePrefixes):
		return IntentSystemClose
	case strings.Contains(lower, "fix") || strings.Contains(lower, "debug"):
		return IntentDevCommand
	default:
		return IntentConversation
	}
}

func classifyTone(lower string) Tone {
	switch {
	case strings.HasSuffix(lower, "!"):
		return ToneEmphatic
	case strings.HasSuffix(lower, "?"):
		return ToneQuestioning
	default:
		return ToneNeutral
	}
}

func empathyFor(emotion Emotion) float64 {
	switch emotion {
	case EmotionGratitude, EmotionHappy:
		return 0.8
	case EmotionSeekingHelp:
		return 0.7
	case EmotionFrustration:
		return 0.4
	case EmotionAnger:
		return 0.2
	default:
		return 0.5
	}
}

func aggressionFor(sentiment Sentiment) float64 {
	switch sentiment {
	case SentimentAggressive:
		return 0.9
	case SentimentNegative:
		return 0.4
	default:
		return 0.1
	}
}

func politenessFor(lower string) float64 {
	score := 0.5
	if strings.Contains(lower, "please") {
		score += 0.45
	}
	if strings.Contains(lower, "thank") {
		score += 0.45
	}
	if containsAny(lower, aggressiveWords) {
		score -= 0.45
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
