package entity

import (
	"time"
)

type LearnedPattern struct {
	ID               string    `json:"id"`
	PatternType      string    `json:"pattern_type"`
	PatternCategory  string    `json:"pattern_category"`
	PatternName      string    `json:"pattern_name"`
	TriggerPhrases   []string  `json:"trigger_phrases"`
	OccurrenceCount  int       `json:"occurrence_count"`
	FirstSeenBy      string    `json:"first_seen_by"`
	LastReinforcedBy string    `json:"last_reinforced_by"`
	LastUsedAt       time.Time `json:"last_used_at"`
	CreatedAt        time.Time `json:"created_at"`
}

type TTSResponse struct {
	ID            string    `json:"id"`
	TriggerType   string    `json:"trigger_type"`
	TriggerValue  string    `json:"trigger_value"`
	UserType      string    `json:"user_type"`
	ResponseText  string    `json:"response_text"`
	ResponseTone  string    `json:"response_tone"`
	SpeakingSpeed float64   `json:"speaking_speed"`
	Priority      int       `json:"priority"`
	IsActive      bool      `json:"is_active"`
	TimesUsed     int       `json:"times_used"`
	LastUsedAt    time.Time `json:"last_used_at"`
	CreatedAt     time.Time `json:"created_at"`
}

type FeedEvent struct {
	ID          string    `json:"id"`
	FeedType    string    `json:"feed_type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SessionID   string    `json:"session_id"`
	UserType    string    `json:"user_type"`
	PageContext string    `json:"page_context"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

type VoiceEvent struct {
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

// UserClaims is the identity carried by a bearer token.
type UserClaims struct {
	ID       string `json:"id"`
	UserType string `json:"user_type"`
}
