package models

import "time"

// VocabularyEntry is one word in a language profile's mastery map.
// Mastery only grows through reinforcement and never exceeds 1.0.
type VocabularyEntry struct {
	Meaning   string    `json:"meaning"`
	Mastery   float64   `json:"mastery"`
	Uses      int       `json:"uses"`
	Contexts  []string  `json:"contexts,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
	LastUsed  time.Time `json:"last_used"`
}

// LanguageProfile is the durable per-language aggregate built by the
// fact merger. A topic lives in StrongTopics or WeakTopics, never both.
type LanguageProfile struct {
	TotalSessions     int                         `json:"total_sessions"`
	TotalMessages     int                         `json:"total_messages"`
	AvgFluency        int                         `json:"avg_fluency"`
	FluencyTrend      []int                       `json:"fluency_trend"`
	StrongTopics      []string                    `json:"strong_topics"`
	WeakTopics        []string                    `json:"weak_topics"`
	VocabularyMastery map[string]*VocabularyEntry `json:"vocabulary_mastery"`
}

// Knowledge is the cross-session facts memory document, keyed by language name
type Knowledge struct {
	Languages   map[string]*LanguageProfile `json:"languages"`
	LastUpdated *time.Time                  `json:"last_updated"`
}

// DefaultKnowledge returns the empty facts memory shape
func DefaultKnowledge() *Knowledge {
	return &Knowledge{Languages: map[string]*LanguageProfile{}}
}

// NewLanguageProfile returns a fresh profile for a language seen for the first time
func NewLanguageProfile() *LanguageProfile {
	return &LanguageProfile{
		FluencyTrend:      []int{},
		StrongTopics:      []string{},
		WeakTopics:        []string{},
		VocabularyMastery: map[string]*VocabularyEntry{},
	}
}
