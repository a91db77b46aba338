package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Language used until the learner picks one with /language
	DefaultLanguage string
	// Upper bound on one completion round-trip
	RequestTimeout time.Duration
	// Quiz answer sessions older than this are discarded
	QuizStateTTL time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		DefaultLanguage: "Hindi",
		RequestTimeout:  90 * time.Second,
		QuizStateTTL:    30 * time.Minute,
	}
}
