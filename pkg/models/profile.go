package models

// ProfileVocab is one entry of the aggregated vocabulary list. Strength
// merges mastery estimates from every source; Source names the layer the
// entry first came from.
type ProfileVocab struct {
	Word     string   `json:"word"`
	Meaning  string   `json:"meaning"`
	Strength float64  `json:"strength"`
	Contexts []string `json:"contexts,omitempty"`
	Source   string   `json:"source"`
}

// LearnerProfile is the aggregator's unified read-only view over the
// exposure log, progression memory, facts memory and recent sessions.
// Vocabulary is sorted weakest-first; quiz generation depends on that.
type LearnerProfile struct {
	Memory           *Memory        `json:"memory"`
	Level            int            `json:"level"`
	Difficulty       string         `json:"difficulty"`
	Vocabulary       []ProfileVocab `json:"vocabulary"`
	VocabCount       int            `json:"vocab_count"`
	ContextSentences []string       `json:"context_sentences"`
	ChatTopics       []string       `json:"chat_topics"`
	WeakTopics       []string       `json:"weak_topics"`
	StrongTopics     []string       `json:"strong_topics"`
	AvgFluency       int            `json:"avg_fluency"`
	TotalSessions    int            `json:"total_sessions"`
}
