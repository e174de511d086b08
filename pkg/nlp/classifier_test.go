package nlp

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestClassifier() IClassifier {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewClassifier(log)
}

func TestClassifyGratefulUtterance(t *testing.T) {
	c := newTestClassifier()

	result := c.Classify("thank you so much!")

	assert.Equal(t, SentimentPositive, result.Sentiment)
	assert.Equal(t, EmotionGratitude, result.Emotion)
	assert.Equal(t, ToneEmphatic, result.Tone)
	assert.GreaterOrEqual(t, result.PolitenessScore, 0.9)
}

func TestClassifyAggressiveBackCommand(t *testing.T) {
	c := newTestClassifier()

	result := c.Classify("this is so stupid, go back")

	assert.Equal(t, SentimentAggressive, result.Sentiment)
	assert.Equal(t, EmotionAnger, result.Emotion)
	assert.Equal(t, IntentSystemBack, result.Intent)
	assert.GreaterOrEqual(t, result.AggressionLevel, 0.8)
}

func TestClassifySentimentPriority(t *testing.T) {
	c := newTestClassifier()

	// Aggressive markers outrank positive ones in the same utterance.
	result := c.Classify("great but this is garbage")
	assert.Equal(t, SentimentAggressive, result.Sentiment)

	result = c.Classify("good but slow")
	assert.Equal(t, SentimentNegative, result.Sentiment)
}

func TestClassifyIntents(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		text     string
		expected Intent
	}{
		{"open the partners page", IntentNavigation},
		{"go to dashboard", IntentNavigation},
		{"show me listings", IntentNavigation},
		{"what is vistaview", IntentQuery},
		{"how does this work?", IntentQuery},
		{"stop listening", IntentSystemStop},
		{"pause for a second", IntentSystemStop},
		{"go back", IntentSystemBack},
		{"back to the last page", IntentSystemBack},
		{"close this", IntentSystemClose},
		{"exit", IntentSystemClose},
		{"home", IntentSystemClose},
		{"can you fix the form", IntentDevCommand},
		{"debug mode on", IntentDevCommand},
		{"nice weather today", IntentConversation},
		{"", IntentConversation},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, c.Classify(tt.text).Intent, "text %q", tt.text)
	}
}

func TestClassifyEmotionRefinement(t *testing.T) {
	c := newTestClassifier()

	assert.Equal(t, EmotionGreeting, c.Classify("hello there").Emotion)
	assert.Equal(t, EmotionFarewell, c.Classify("okay goodbye").Emotion)
	assert.Equal(t, EmotionSeekingHelp, c.Classify("i need help with this form").Emotion)
	assert.Equal(t, EmotionGratitude, c.Classify("thanks for the help").Emotion)
	assert.Equal(t, EmotionCalm, c.Classify("the sky is blue").Emotion)
}

func TestClassifyTone(t *testing.T) {
	c := newTestClassifier()

	assert.Equal(t, ToneEmphatic, c.Classify("do it now!").Tone)
	assert.Equal(t, ToneQuestioning, c.Classify("is this right?").Tone)
	assert.Equal(t, ToneNeutral, c.Classify("fine").Tone)
}

func TestClassifyScoresClamped(t *testing.T) {
	c := newTestClassifier()

	result := c.Classify("please please thank you thank you")
	assert.LessOrEqual(t, result.PolitenessScore, 1.0)

	result = c.Classify("stupid useless garbage")
	assert.GreaterOrEqual(t, result.PolitenessScore, 0.0)
	assert.LessOrEqual(t, result.AggressionLevel, 1.0)
}

func TestClassifyNeutralDefaults(t *testing.T) {
	c := newTestClassifier()

	result := c.Classify("")

	assert.Equal(t, SentimentNeutral, result.Sentiment)
	assert.Equal(t, EmotionCalm, result.Emotion)
	assert.Equal(t, IntentConversation, result.Intent)
	assert.Equal(t, ToneNeutral, result.Tone)
	assert.InDelta(t, 0.5, result.PolitenessScore, 0.001)
}
