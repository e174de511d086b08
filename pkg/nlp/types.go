package nlp

type Sentiment string

const (
	SentimentPositive   Sentiment = "positive"
	SentimentNegative   Sentiment = "negative"
	SentimentNeutral    Sentiment = "neutral"
	SentimentAggressive Sentiment = "aggressive"
)

type Emotion string

const (
	EmotionHappy       Emotion = "happy"
	EmotionFrustration Emotion = "frustration"
	EmotionAnger       Emotion = "anger"
	EmotionCalm        Emotion = "calm"
	EmotionGreeting    Emotion = "greeting"
	EmotionFarewell    Emotion = "farewell"
	EmotionSeekingHelp Emotion = "seeking_help"
	EmotionGratitude   Emotion = "gratitude"
)

type Intent string

const (
	IntentNavigation   Intent = "navigation"
	IntentQuery        Intent = "query"
	IntentSystemStop   Intent = "system_stop"
	IntentSystemBack   Intent = "system_back"
	IntentSystemClose  Intent = "system_close"
	IntentDevCommand   Intent = "dev_command"
	IntentConversation Intent = "conversation"
)

type Tone string

const (
	ToneEmphatic    Tone = "emphatic"
	ToneQuestioning Tone = "questioning"
	ToneNeutral     Tone = "neutral"
)

// ClassificationResult is the full read on a single utterance. Scores
// are always within [0, 1].
type ClassificationResult struct {
	Sentiment       Sentiment `json:"sentiment"`
	Emotion         Emotion   `json:"emotion"`
	EmpathyScore    float64   `json:"empathy_score"`
	AggressionLevel float64   `json:"aggression_level"`
	PolitenessScore float64   `json:"politeness_score"`
	Intent          Intent    `json:"intent"`
	Tone            Tone      `json:"tone"`
}

type IClassifier interface {
	Classify(text string) ClassificationResult
}
