package models

import "time"

// ChatMessage is a single turn stored inside a session
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Fluency   int       `json:"fluency,omitempty"` // user turns only
}

// SessionVocab tracks how often a word came up inside one session
type SessionVocab struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Count   int    `json:"count"`
}

// Session is one conversation with the tutor. AvgFluency is always
// recomputed from FluencyScores on save, never updated in place.
type Session struct {
	ID             string         `json:"id"`
	Language       string         `json:"language"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	FluencyScores  []int          `json:"fluency_scores"`
	AvgFluency     int            `json:"avg_fluency"`
	TopicsCovered  []string       `json:"topics_covered"`
	VocabularyUsed []SessionVocab `json:"vocabulary_used"`
	Messages       []ChatMessage  `json:"messages"`
}

// SessionSummary is a lightweight view of a session without the message history
type SessionSummary struct {
	ID                 string    `json:"id"`
	Language           string    `json:"language"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	MessageCount       int       `json:"message_count"`
	AvgFluency         int       `json:"avg_fluency"`
	TopicsCovered      []string  `json:"topics_covered"`
	LastMessagePreview string    `json:"last_message_preview,omitempty"`
}
