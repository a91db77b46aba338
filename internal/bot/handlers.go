package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/lingobot/internal/quiz"
	"github.com/example/lingobot/internal/streak"
	"github.com/example/lingobot/pkg/models"
)

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	state := b.state(chatID)

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			b.handleStart(chatID, state)
		case "language":
			b.handleLanguage(chatID, state, message.CommandArguments())
		case "quiz":
			b.handleQuiz(chatID, state, message.CommandArguments())
		case "answer":
			b.handleQuizAnswer(chatID, state, message.CommandArguments())
		case "streak":
			b.handleStreak(chatID)
		case "stats":
			b.handleStats(chatID)
		case "reset":
			b.handleReset(chatID, state, message.CommandArguments())
		default:
			b.send(chatID, "Unknown command. Try /start.")
		}
		return
	}

	// during a quiz, plain messages are answers
	if state.Quiz != nil {
		b.handleQuizAnswer(chatID, state, message.Text)
		return
	}
	b.handleChat(chatID, state, message.Text)
}

func (b *Bot) handleStart(chatID int64, state *userState) {
	state.Quiz = nil
	b.send(chatID, fmt.Sprintf(`Welcome! I am your %s practice partner.

Just send me a message in %s (or English) and we talk. I track the words you use, score your fluency and remember what needs work.

Commands:
/language <name> - switch the language you practice
/quiz [4-8] - adaptive quiz over your weakest words
/streak - your daily practice streak
/stats - progress dashboard
/reset confirm - wipe all learning data`, state.Language, state.Language))
}

func (b *Bot) handleLanguage(chatID int64, state *userState, args string) {
	language := strings.TrimSpace(args)
	if language == "" {
		b.send(chatID, fmt.Sprintf("Current language: %s. Use /language <name> to switch.", state.Language))
		return
	}
	state.Language = language
	state.Quiz = nil
	state.SessionID = ""
	b.send(chatID, fmt.Sprintf("Switched to %s. Send a message to start practicing!", language))
}

func (b *Bot) handleChat(chatID int64, state *userState, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if !b.aiEnabled {
		b.send(chatID, "The tutor is offline (no completion service configured). /streak and /stats still work.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.config.RequestTimeout)
	defer cancel()

	result, err := b.turns.ProcessTurn(ctx, state.SessionID, text, state.Language)
	if err != nil {
		log.Printf("[bot] turn failed for chat %d: %v", chatID, err)
		b.send(chatID, "Sorry, I could not process that. Please try again.")
		return
	}
	state.SessionID = result.SessionID

	reply := result.Reply
	if result.Evaluation.Score > 0 {
		reply += fmt.Sprintf("\n\n_Fluency: %d/100: %s_", result.Evaluation.Score, result.Evaluation.Feedback)
	}
	b.send(chatID, reply)
}

func (b *Bot) handleQuiz(chatID int64, state *userState, args string) {
	if state.Quiz != nil {
		b.send(chatID, "A quiz is already running. Answer the current question or /start to abandon it.")
		return
	}
	if !b.aiEnabled {
		b.send(chatID, "Quizzes need the completion service, which is not configured.")
		return
	}

	numQuestions := 0
	if trimmed := strings.TrimSpace(args); trimmed != "" {
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			b.send(chatID, "Usage: /quiz [number of questions, 4-8]")
			return
		}
		numQuestions = n
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.config.RequestTimeout)
	defer cancel()

	generated, err := b.generator.Generate(ctx, state.Language, numQuestions)
	if err != nil {
		if errors.Is(err, quiz.ErrInsufficientVocabulary) {
			b.send(chatID, "Not enough vocabulary yet. Practice a bit more first, then try /quiz again.")
			return
		}
		log.Printf("[bot] quiz generation failed: %v", err)
		b.send(chatID, "Could not generate a quiz right now. Please try again.")
		return
	}

	state.Quiz = &quizState{
		QuizID:    generated.QuizID,
		Questions: len(generated.Questions),
		Answers:   make([]string, 0, len(generated.Questions)),
		StartedAt: time.Now(),
	}
	b.send(chatID, fmt.Sprintf("📝 Quiz ready: %d questions (%s). Reply with your answer to each.",
		len(generated.Questions), generated.Metadata.Theme))
	b.sendQuestion(chatID, state)
}

func (b *Bot) sendQuestion(chatID int64, state *userState) {
	stored, err := b.quizzes.Load(state.Quiz.QuizID)
	if err != nil {
		log.Printf("[bot] failed to load quiz %s: %v", state.Quiz.QuizID, err)
		state.Quiz = nil
		return
	}
	question := stored.Questions[state.Quiz.Current]

	var text strings.Builder
	fmt.Fprintf(&text, "*Question %d of %d*\n", question.ID+1, state.Quiz.Questions)
	switch question.Type {
	case models.QuestionListeningMCQ:
		fmt.Fprintf(&text, "What does *%s*", question.Word)
		if question.WordRomanized != "" {
			fmt.Fprintf(&text, " (%s)", question.WordRomanized)
		}
		text.WriteString(" mean?\n")
		for i, option := range question.Options {
			fmt.Fprintf(&text, "%d. %s\n", i+1, option)
		}
		text.WriteString("Reply with the answer text.")
	case models.QuestionSpeaking:
		fmt.Fprintf(&text, "Say it in %s: %q", stored.Language, question.SentenceEN)
		if len(question.HintWords) > 0 {
			text.WriteString("\nHints:")
			for _, hint := range question.HintWords {
				fmt.Fprintf(&text, " %s (%s)", hint.Word, hint.Meaning)
			}
		}
	}
	b.send(chatID, text.String())
}

func (b *Bot) handleQuizAnswer(chatID int64, state *userState, text string) {
	if state.Quiz == nil {
		b.send(chatID, "No quiz is running. Start one with /quiz.")
		return
	}
	answer := strings.TrimSpace(text)
	if answer == "" {
		b.send(chatID, "Please send an answer.")
		return
	}

	state.Quiz.Answers = append(state.Quiz.Answers, answer)
	state.Quiz.Current++
	if state.Quiz.Current < state.Quiz.Questions {
		b.sendQuestion(chatID, state)
		return
	}
	b.finishQuiz(chatID, state)
}

func (b *Bot) finishQuiz(chatID int64, state *userState) {
	answers := make([]models.Answer, len(state.Quiz.Answers))
	for i, answer := range state.Quiz.Answers {
		answers[i] = models.Answer{QuestionID: i, Answer: answer}
	}
	quizID := state.Quiz.QuizID
	state.Quiz = nil

	ctx, cancel := context.WithTimeout(context.Background(), b.config.RequestTimeout)
	defer cancel()

	graded, err := b.evaluator.Evaluate(ctx, quizID, answers)
	if err != nil {
		var completed *quiz.AlreadyCompletedError
		if !errors.As(err, &completed) {
			log.Printf("[bot] quiz evaluation failed: %v", err)
			b.send(chatID, "Could not grade the quiz. Please try /quiz again.")
			return
		}
		b.send(chatID, formatResults(completed.Results))
		return
	}
	b.send(chatID, formatResults(graded.Results))
}

func formatResults(results *models.QuizResults) string {
	var text strings.Builder
	fmt.Fprintf(&text, "🏁 *Quiz complete!* Score %d/100, %d of %d correct, +%d XP",
		results.TotalScore, results.CorrectCount, results.TotalQuestions, results.XPEarned)
	if results.LeveledUp {
		text.WriteString("\n🎉 Level up!")
	}
	text.WriteString("\n")
	for _, result := range results.QuestionResults {
		mark := "❌"
		if result.Correct {
			mark = "✅"
		}
		fmt.Fprintf(&text, "\n%s Q%d (%d): %s", mark, result.QuestionID+1, result.Score, result.Feedback)
	}
	return text.String()
}

func (b *Bot) handleStreak(chatID int64) {
	info, err := b.streaks.Info()
	if err != nil {
		log.Printf("[bot] failed to load streak: %v", err)
		b.send(chatID, "Could not load your streak.")
		return
	}
	ledger, err := b.streaks.Load()
	if err != nil {
		log.Printf("[bot] failed to load streak ledger: %v", err)
		b.send(chatID, "Could not load your streak.")
		return
	}

	var text strings.Builder
	fmt.Fprintf(&text, "🔥 Current streak: %d days\n🏆 Longest: %d days\n📅 Active days: %d\n💬 Today: %d messages\n\nLast week: ",
		info.Current, info.Longest, info.TotalActiveDays, info.TodayHits)
	for _, day := range streak.RecentDays(ledger, 7, time.Now().UTC()) {
		if day.Active {
			text.WriteString("✅")
		} else {
			text.WriteString("▫️")
		}
	}
	b.send(chatID, text.String())
}

func (b *Bot) handleStats(chatID int64) {
	overview, err := b.stats.Overview()
	if err != nil {
		log.Printf("[bot] failed to build overview: %v", err)
		b.send(chatID, "Could not load your stats.")
		return
	}

	var text strings.Builder
	fmt.Fprintf(&text, "📊 *Level %d* (%s), %d XP", overview.XP.Level, overview.XP.Difficulty, overview.XP.XP)
	if overview.XP.XPToNext > 0 {
		fmt.Fprintf(&text, ", %d XP to next level (%d%%)", overview.XP.XPToNext, overview.XP.ProgressPct)
	}
	fmt.Fprintf(&text, "\n📚 Words: %d seen, %d mastered, %d used by you",
		overview.Words.Total, overview.Words.Mastered, overview.Words.UserUsed)
	for _, language := range overview.Languages {
		fmt.Fprintf(&text, "\n🌍 %s: %d sessions, fluency %d/100, %d words tracked",
			language.Language, language.TotalSessions, language.AvgFluency, language.VocabCount)
		if len(language.WeakTopics) > 0 {
			fmt.Fprintf(&text, " (weak: %s)", strings.Join(language.WeakTopics, ", "))
		}
	}
	if overview.Quizzes.Total > 0 {
		fmt.Fprintf(&text, "\n📝 Quizzes: %d taken, %d completed, avg score %d",
			overview.Quizzes.Total, overview.Quizzes.Completed, overview.Quizzes.AvgScore)
	}
	fmt.Fprintf(&text, "\n🔥 Streak: %d days", overview.Streak.Current)
	b.send(chatID, text.String())
}

func (b *Bot) handleReset(chatID int64, state *userState, args string) {
	if strings.TrimSpace(args) != "confirm" {
		b.send(chatID, "This wipes ALL learning data: XP, vocabulary, sessions, quizzes and streak. Send /reset confirm if you are sure.")
		return
	}
	if err := b.stats.Reset(); err != nil {
		log.Printf("[bot] reset failed: %v", err)
		b.send(chatID, "Reset failed. Please try again.")
		return
	}
	state.Quiz = nil
	state.SessionID = ""
	b.send(chatID, "All learning data wiped. Fresh start! Send a message to begin!")
}
