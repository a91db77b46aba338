package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/lingobot/internal/ai"
	"github.com/example/lingobot/internal/streak"
	"github.com/example/lingobot/pkg/models"
)

// fluencyMarker separates the tutor's conversational reply from the
// structured evaluation block it is instructed to append.
const fluencyMarker = "|||FLUENCY_DATA|||"

// maxHistoryTurns caps the conversation context sent to the model
const maxHistoryTurns = 20

// ErrMissingFields is returned when a turn lacks message or language
var ErrMissingFields = errors.New("message and language are required")

// Completer is the slice of the completion client the turn engine needs
type Completer interface {
	CompleteConversation(ctx context.Context, systemPrompt string, messages []ai.Message) (string, error)
}

// TurnEngine runs one conversational turn end to end: recall, completion,
// evaluation parsing, session update and fact merge.
type TurnEngine struct {
	store   *Store
	streaks *streak.Store
	ai      Completer
}

// NewTurnEngine wires a turn engine
func NewTurnEngine(store *Store, streaks *streak.Store, completer Completer) *TurnEngine {
	return &TurnEngine{store: store, streaks: streaks, ai: completer}
}

// TurnResult is what a completed turn hands back to the caller
type TurnResult struct {
	SessionID  string                `json:"sessionId"`
	Reply      string                `json:"reply"`
	Evaluation models.TurnEvaluation `json:"evaluation"`
	RecallUsed bool                  `json:"recall_used"`
}

// ProcessTurn handles one user message. The sessionID may be empty to
// start a new conversation.
func (e *TurnEngine) ProcessTurn(ctx context.Context, sessionID, message, language string) (*TurnResult, error) {
	if strings.TrimSpace(message) == "" || strings.TrimSpace(language) == "" {
		return nil, ErrMissingFields
	}

	if _, err := e.streaks.RecordHit(); err != nil {
		log.Printf("[turn] failed to record streak hit: %v", err)
	}

	session, err := e.store.LoadSession(sessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		session = NewSession(sessionID, language)
		log.Printf("[turn] new session created: %s", session.ID)
	}

	recall, err := e.store.BuildRecallContext(message, language)
	if err != nil {
		return nil, err
	}

	systemPrompt := buildTutorPrompt(language, recall)

	history := session.Messages
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	messages := make([]ai.Message, 0, len(history)+1)
	for _, msg := range history {
		messages = append(messages, ai.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, ai.Message{Role: "user", Content: message})

	fullText, err := e.ai.CompleteConversation(ctx, systemPrompt, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to get tutor reply: %v", err)
	}

	reply, eval := parseTurnEvaluation(fullText)

	now := time.Now().UTC()
	session.Messages = append(session.Messages,
		models.ChatMessage{Role: "user", Content: message, Timestamp: now, Fluency: eval.Score},
		models.ChatMessage{Role: "assistant", Content: reply, Timestamp: now},
	)
	if eval.Score > 0 {
		session.FluencyScores = append(session.FluencyScores, eval.Score)
	}
	for _, item := range eval.NewVocabulary {
		if item.Word == "" {
			continue
		}
		found := false
		for i := range session.VocabularyUsed {
			if session.VocabularyUsed[i].Word == item.Word {
				session.VocabularyUsed[i].Count++
				found = true
				break
			}
		}
		if !found {
			session.VocabularyUsed = append(session.VocabularyUsed,
				models.SessionVocab{Word: item.Word, Meaning: item.Meaning, Count: 1})
		}
	}
	for _, topic := range eval.Topics {
		if topic != "" && !contains(session.TopicsCovered, topic) {
			session.TopicsCovered = append(session.TopicsCovered, topic)
		}
	}

	if err := e.store.SaveSession(session); err != nil {
		return nil, err
	}
	if _, err := e.store.MergeFacts(session, eval, language); err != nil {
		return nil, err
	}

	return &TurnResult{
		SessionID:  session.ID,
		Reply:      reply,
		Evaluation: eval,
		RecallUsed: recall != "",
	}, nil
}

// parseTurnEvaluation splits the model output at the fluency marker. A
// missing or unparsable evaluation block degrades to the zero-score
// default rather than failing the turn.
func parseTurnEvaluation(fullText string) (string, models.TurnEvaluation) {
	eval := models.DefaultTurnEvaluation()

	idx := strings.Index(fullText, fluencyMarker)
	if idx == -1 {
		return strings.TrimSpace(fullText), eval
	}

	reply := strings.TrimSpace(fullText[:idx])
	tail := ai.ExtractObject(fullText[idx+len(fluencyMarker):])
	if tail == "" {
		return reply, eval
	}

	var parsed models.TurnEvaluation
	if err := ai.UnmarshalLenient([]byte(tail), &parsed); err != nil {
		log.Printf("[turn] fluency block parse error: %v", err)
		return reply, eval
	}
	if parsed.NewVocabulary == nil {
		parsed.NewVocabulary = []models.VocabularyItem{}
	}
	if parsed.Topics == nil {
		parsed.Topics = []string{}
	}
	if parsed.Suggestions == nil {
		parsed.Suggestions = []string{}
	}
	return reply, parsed
}
