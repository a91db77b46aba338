package bot

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/lingobot/internal/memory"
	"github.com/example/lingobot/internal/quiz"
	"github.com/example/lingobot/internal/stats"
	"github.com/example/lingobot/internal/streak"
)

// userState tracks an in-flight multi-message interaction for one chat
type userState struct {
	Language  string
	SessionID string
	Quiz      *quizState
	Timestamp time.Time
}

// quizState collects answers question by question
type quizState struct {
	QuizID    string
	Questions int
	Current   int
	Answers   []string
	StartedAt time.Time
}

// Bot represents the Telegram bot application
type Bot struct {
	api       *tgbotapi.BotAPI
	token     string
	learnerID int64 // restrict to one chat when set

	turns     *memory.TurnEngine
	generator *quiz.Generator
	evaluator *quiz.Evaluator
	quizzes   *quiz.Store
	streaks   *streak.Store
	stats     *stats.Service

	aiEnabled  bool
	config     *BotConfig
	userStates map[int64]*userState
}

// Deps are the engines the bot front-ends
type Deps struct {
	Turns     *memory.TurnEngine
	Generator *quiz.Generator
	Evaluator *quiz.Evaluator
	Quizzes   *quiz.Store
	Streaks   *streak.Store
	Stats     *stats.Service
	AIEnabled bool
}

// New creates a new bot instance
func New(deps Deps) (*Bot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	bot := &Bot{
		token:      token,
		turns:      deps.Turns,
		generator:  deps.Generator,
		evaluator:  deps.Evaluator,
		quizzes:    deps.Quizzes,
		streaks:    deps.Streaks,
		stats:      deps.Stats,
		aiEnabled:  deps.AIEnabled,
		config:     DefaultConfig(),
		userStates: make(map[int64]*userState),
	}

	if raw := os.Getenv("LEARNER_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Printf("Warning: invalid LEARNER_CHAT_ID: %s", raw)
		} else {
			bot.learnerID = id
		}
	}
	if lang := os.Getenv("DEFAULT_LANGUAGE"); lang != "" {
		bot.config.DefaultLanguage = lang
	}

	return bot, nil
}

// Start connects to Telegram and processes updates until the channel closes
func (b *Bot) Start() error {
	api, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("failed to create bot API: %v", err)
	}
	b.api = api
	log.Printf("[bot] authorized as @%s", api.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	for update := range api.GetUpdatesChan(updateConfig) {
		if update.Message == nil || update.Message.Chat == nil {
			continue
		}
		chatID := update.Message.Chat.ID
		if b.learnerID != 0 && chatID != b.learnerID {
			log.Printf("[bot] ignoring message from chat %d", chatID)
			continue
		}
		b.handleMessage(update.Message)
	}
	return nil
}

// Stop closes the update channel
func (b *Bot) Stop() {
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
}

// SendStreakReminder lets the scheduler nudge the learner
func (b *Bot) SendStreakReminder(current int) error {
	if b.api == nil || b.learnerID == 0 {
		return fmt.Errorf("no learner chat configured for reminders")
	}
	text := fmt.Sprintf("🔥 Your %d-day streak ends at midnight! A single message keeps it alive.", current)
	return b.send(b.learnerID, text)
}

func (b *Bot) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		// markdown from model output is not always well-formed; retry plain
		msg.ParseMode = ""
		if _, plainErr := b.api.Send(msg); plainErr != nil {
			return fmt.Errorf("failed to send message: %v", plainErr)
		}
	}
	return nil
}

// state returns the chat's interaction state, creating it if needed and
// expiring stale quiz sessions
func (b *Bot) state(chatID int64) *userState {
	state, ok := b.userStates[chatID]
	if !ok {
		state = &userState{Language: b.config.DefaultLanguage, Timestamp: time.Now()}
		b.userStates[chatID] = state
	}
	if state.Quiz != nil && time.Since(state.Quiz.StartedAt) > b.config.QuizStateTTL {
		state.Quiz = nil
	}
	return state
}
