package practice

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/internal/progression"
	"github.com/example/lingobot/pkg/models"
)

const (
	// a task counts as completed from this score up
	taskCompletionScore = 70

	// strength bump for a word the learner produced again, and the
	// starting strength for a first production
	userUsedIncrement = 0.1
	userUsedInitial   = 0.5

	// xp per exchange is the sum of floor(score/5) over task results
	xpScoreDivisor = 5
)

// ErrEmptyInput is returned when the player utterance is blank
var ErrEmptyInput = errors.New("input text is required")

// Completer is the slice of the completion client scene practice needs
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userMessage string, out any) error
}

// Engine evaluates scene-practice exchanges and applies their effects:
// XP, the word exposure log and the interaction log.
type Engine struct {
	docs     *database.DocumentStore
	progress *progression.Store
	ai       Completer
}

// NewEngine wires a scene practice engine
func NewEngine(docs *database.DocumentStore, progress *progression.Store, completer Completer) *Engine {
	return &Engine{docs: docs, progress: progress, ai: completer}
}

// ExchangeResult is what one processed exchange hands back to the caller
type ExchangeResult struct {
	Evaluation *models.SceneEvaluation `json:"evaluation"`
	XPGained   int                     `json:"xp_gained"`
	LeveledUp  bool                    `json:"leveled_up"`
	Memory     models.MemorySnapshot   `json:"memory"`
}

// ProcessExchange runs one player utterance through the scene: the
// completion service scores it against the tasks and replies in
// character, then XP, the words doc and the conversation log are updated.
func (e *Engine) ProcessExchange(ctx context.Context, sceneID, inputText, language string, tasks []models.SceneTask) (*ExchangeResult, error) {
	if strings.TrimSpace(inputText) == "" {
		return nil, ErrEmptyInput
	}

	mem, err := e.progress.Get()
	if err != nil {
		return nil, err
	}

	system, user := buildScenePrompt(language, mem.Difficulty, sceneID, tasks, inputText)
	var eval models.SceneEvaluation
	if err := e.ai.CompleteJSON(ctx, system, user, &eval); err != nil {
		return nil, fmt.Errorf("failed to evaluate exchange: %v", err)
	}
	eval.SceneID = sceneID
	eval.InputText = inputText
	for i := range eval.Tasks {
		eval.Tasks[i].Completed = eval.Tasks[i].Score >= taskCompletionScore
	}

	xp := 0
	for _, task := range eval.Tasks {
		xp += task.Score / xpScoreDivisor
	}

	updated, leveledUp, err := e.progress.AddXP(xp)
	if err != nil {
		return nil, err
	}

	var learned []string
	for _, item := range eval.WordsToAdd {
		if item.Word != "" {
			learned = append(learned, item.Word)
		}
	}
	if err := e.progress.RecordWords(learned); err != nil {
		return nil, err
	}
	if err := e.applyWordExposure(eval.WordsToAdd); err != nil {
		return nil, err
	}

	snapshot := models.MemorySnapshot{XP: updated.XP, Level: updated.Level, Difficulty: updated.Difficulty}
	if err := e.appendConversation(sceneID, inputText, tasks, &eval, xp, snapshot); err != nil {
		return nil, err
	}

	log.Printf("[practice] scene %s: %d tasks scored, +%d XP", sceneID, len(eval.Tasks), xp)
	return &ExchangeResult{Evaluation: &eval, XPGained: xp, LeveledUp: leveledUp, Memory: snapshot}, nil
}

// applyWordExposure moves produced words through the exposure log:
// user_used strength grows by 0.1 (capped at 1.0, new words start at
// 0.5), the word joins "all" if absent and leaves "scene_used".
func (e *Engine) applyWordExposure(items []models.VocabularyItem) error {
	if len(items) == 0 {
		return nil
	}
	var words models.Words
	return e.docs.Update(database.KeyWords, models.DefaultWords(), &words, func() error {
		for _, item := range items {
			if item.Word == "" {
				continue
			}

			found := false
			for i := range words.UserUsed {
				if words.UserUsed[i].Word != item.Word {
					continue
				}
				found = true
				words.UserUsed[i].Strength += userUsedIncrement
				if words.UserUsed[i].Strength > 1 {
					words.UserUsed[i].Strength = 1
				}
				if words.UserUsed[i].Meaning == "" {
					words.UserUsed[i].Meaning = item.Meaning
				}
				if words.UserUsed[i].Context == "" {
					words.UserUsed[i].Context = item.ContextSentence
				}
				break
			}
			if !found {
				words.UserUsed = append(words.UserUsed, models.WordEntry{
					Word:     item.Word,
					Meaning:  item.Meaning,
					Context:  item.ContextSentence,
					Strength: userUsedInitial,
				})
			}

			inAll := false
			for _, entry := range words.All {
				if entry.Word == item.Word {
					inAll = true
					break
				}
			}
			if !inAll {
				words.All = append(words.All, models.WordEntry{Word: item.Word, Meaning: item.Meaning})
			}

			for i, entry := range words.SceneUsed {
				if entry.Word == item.Word {
					words.SceneUsed = append(words.SceneUsed[:i], words.SceneUsed[i+1:]...)
					break
				}
			}
		}
		return nil
	})
}

func (e *Engine) appendConversation(sceneID, inputText string, tasks []models.SceneTask, eval *models.SceneEvaluation, xp int, snapshot models.MemorySnapshot) error {
	var entries []models.ConversationEntry
	return e.docs.Update(database.KeyConversations, []models.ConversationEntry{}, &entries, func() error {
		entries = append(entries, models.ConversationEntry{
			ID:          "conv_" + uuid.NewString(),
			Timestamp:   time.Now().UTC(),
			SceneID:     sceneID,
			UserInput:   inputText,
			Tasks:       tasks,
			Evaluation:  eval,
			XPGained:    xp,
			MemoryAfter: snapshot,
		})
		return nil
	})
}

// buildScenePrompt sets up the in-character NPC who also grades the
// exchange against the scene tasks.
func buildScenePrompt(language, difficulty, sceneID string, tasks []models.SceneTask, inputText string) (system, user string) {
	var taskList strings.Builder
	for _, task := range tasks {
		fmt.Fprintf(&taskList, "- %s", task.TaskID)
		if task.ExpectedIntent != "" {
			fmt.Fprintf(&taskList, ": %s", task.ExpectedIntent)
		}
		if len(task.Keywords) > 0 {
			fmt.Fprintf(&taskList, " (keywords: %s)", strings.Join(task.Keywords, ", "))
		}
		taskList.WriteString("\n")
	}

	system = fmt.Sprintf(`You are an NPC in a %[1]s practice scene (%[2]s) talking to a %[3]s-level learner. Stay in character, keep replies short and level-appropriate.

Score the player's utterance against each task (0-100, meaning-first, tolerant of spelling and transliteration).

Return ONLY a valid JSON object, no markdown fences, with this exact shape:
{"tasks": [{"task_id": "<id>", "score": <0-100>, "feedback": "<one sentence>"}], "npc_response": {"text": "<your in-character %[1]s reply>", "translation": "<English translation>", "emotion": "<neutral|happy|confused|impressed>"}, "hint": "<optional nudge if the player is stuck>", "words_to_add": [{"word": "<%[1]s word the player used or needs>", "meaning": "<English meaning>", "context_sentence": "<short example>"}]}

Tasks:
%[4]s`, language, sceneID, difficulty, taskList.String())
	user = inputText
	return system, user
}
