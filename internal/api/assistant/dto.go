package assistant

import (
	"time"

	"VistaVoice/pkg/nlp"
)

type CommandRequest struct {
	Text        string `json:"text" validate:"required,min=1,max=500"`
	UserType    string `json:"user_type" validate:"required,oneof=guest buyer vendor admin"`
	SessionID   string `json:"session_id" validate:"required"`
	PageContext string `json:"page_context,omitempty"`
}

type CommandResponse struct {
	Classification nlp.ClassificationResult `json:"classification"`
	Response       SpokenResponse           `json:"response"`
	Directive      Directive                `json:"directive"`
	Pattern        *PatternResult           `json:"pattern,omitempty"`
}

type SpokenResponse struct {
	Text  string  `json:"text"`
	Tone  string  `json:"tone"`
	Speed float64 `json:"speed"`
}

// Directive tells the client what to do with the page after a command.
// Action is one of navigate, back, reset, stop, none.
type Directive struct {
	Action string `json:"action"`
	Route  string `json:"route,omitempty"`
	Label  string `json:"label,omitempty"`
}

type PatternResult struct {
	ID    string `json:"id"`
	IsNew bool   `json:"is_new"`
}

type SessionResponse struct {
	SessionID   string `json:"session_id"`
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

type HistoryEntry struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	UserType     string    `json:"user_type"`
	Transcript   string    `json:"transcript"`
	Intent       string    `json:"intent"`
	Sentiment    string    `json:"sentiment"`
	Emotion      string    `json:"emotion"`
	ResponseText string    `json:"response_text"`
	PageContext  string    `json:"page_context"`
	CreatedAt    time.Time `json:"created_at"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

type PatternSummary struct {
	ID              string    `json:"id"`
	PatternType     string    `json:"pattern_type"`
	PatternCategory string    `json:"pattern_category"`
	PatternName     string    `json:"pattern_name"`
	TriggerPhrases  []string  `json:"trigger_phrases"`
	OccurrenceCount int       `json:"occurrence_count"`
	LastUsedAt      time.Time `json:"last_used_at"`
}

type FeedItem struct {
	ID          string    `json:"id"`
	FeedType    string    `json:"feed_type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	PageContext string    `json:"page_context,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type StatsResponse struct {
	TotalCommands   int            `json:"total_commands"`
	TotalPatterns   int            `json:"total_patterns"`
	TotalFeedEvents int            `json:"total_feed_events"`
	SentimentCounts map[string]int `json:"sentiment_counts"`
}

type CreateResponseRequest struct {
	TriggerType   string  `json:"trigger_type" validate:"required,oneof=emotion intent"`
	TriggerValue  string  `json:"trigger_value" validate:"required,min=1,max=50"`
	UserType      string  `json:"user_type" validate:"required,oneof=any guest buyer vendor admin"`
	ResponseText  string  `json:"response_text" validate:"required,min=1,max=500"`
	ResponseTone  string  `json:"response_tone" validate:"required,oneof=warm calm neutral upbeat apologetic"`
	SpeakingSpeed float64 `json:"speaking_speed" validate:"omitempty,gt=0,lte=2"`
	Priority      int     `json:"priority" validate:"omitempty,gte=0,lte=100"`
}

type ResponseCatalogEntry struct {
	ID            string  `json:"id"`
	TriggerType   string  `json:"trigger_type"`
	TriggerValue  string  `json:"trigger_value"`
	UserType      string  `json:"user_type"`
	ResponseText  string  `json:"response_text"`
	ResponseTone  string  `json:"response_tone"`
	SpeakingSpeed float64 `json:"speaking_speed"`
	Priority      int     `json:"priority"`
	IsActive      bool    `json:"is_active"`
	TimesUsed     int     `json:"times_used"`
}

type NLPTestRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}
