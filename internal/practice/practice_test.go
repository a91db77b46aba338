package practice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/internal/progression"
	"github.com/example/lingobot/pkg/models"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, _, _ string, out any) error {
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.response), out)
}

func setupTestEngine(t *testing.T) (*Engine, *database.DocumentStore, *progression.Store, *fakeCompleter) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATA_DIR", t.TempDir())
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })

	docs := database.NewDocumentStore()
	progress := progression.NewStore(docs)
	completer := &fakeCompleter{}
	return NewEngine(docs, progress, completer), docs, progress, completer
}

const sampleEvaluation = `{
	"tasks": [
		{"task_id": "order_drink", "score": 85, "feedback": "Clear order"},
		{"task_id": "say_thanks", "score": 42, "feedback": "Missed the thanks"}
	],
	"npc_response": {"text": "Ek chai, abhi laata hoon!", "translation": "One tea, coming right up!", "emotion": "happy"},
	"words_to_add": [
		{"word": "chai", "meaning": "tea", "context_sentence": "ek chai dena"},
		{"word": "dhanyavad", "meaning": "thank you"}
	]
}`

func sampleTasks() []models.SceneTask {
	return []models.SceneTask{
		{TaskID: "order_drink", ExpectedIntent: "order a drink", Keywords: []string{"chai"}},
		{TaskID: "say_thanks"},
	}
}

func TestProcessExchangeRejectsEmptyInput(t *testing.T) {
	engine, _, _, _ := setupTestEngine(t)
	_, err := engine.ProcessExchange(context.Background(), "cafe", "   ", "Hindi", sampleTasks())
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestProcessExchangeAwardsXP(t *testing.T) {
	engine, _, progress, completer := setupTestEngine(t)
	completer.response = sampleEvaluation

	result, err := engine.ProcessExchange(context.Background(), "cafe", "ek chai dena", "Hindi", sampleTasks())
	require.NoError(t, err)

	// floor(85/5) + floor(42/5) = 17 + 8 = 25
	assert.Equal(t, 25, result.XPGained)
	assert.Equal(t, 25, result.Memory.XP)

	mem, err := progress.Get()
	require.NoError(t, err)
	assert.Equal(t, 25, mem.XP)
	assert.Equal(t, 1, mem.WordsLearned["chai"])
	assert.Equal(t, 1, mem.WordsLearned["dhanyavad"])
}

func TestProcessExchangeMarksTaskCompletion(t *testing.T) {
	engine, _, _, completer := setupTestEngine(t)
	completer.response = sampleEvaluation

	result, err := engine.ProcessExchange(context.Background(), "cafe", "ek chai dena", "Hindi", sampleTasks())
	require.NoError(t, err)

	require.Len(t, result.Evaluation.Tasks, 2)
	assert.True(t, result.Evaluation.Tasks[0].Completed)  // 85 >= 70
	assert.False(t, result.Evaluation.Tasks[1].Completed) // 42 < 70
	assert.Equal(t, "cafe", result.Evaluation.SceneID)
	assert.Equal(t, "ek chai dena", result.Evaluation.InputText)
}

func TestProcessExchangeUpdatesWordsDoc(t *testing.T) {
	engine, docs, _, completer := setupTestEngine(t)
	completer.response = sampleEvaluation

	seed := models.DefaultWords()
	seed.UserUsed = []models.WordEntry{{Word: "chai", Meaning: "tea", Strength: 0.95}}
	seed.SceneUsed = []models.WordEntry{{Word: "dhanyavad", Meaning: "thank you"}}
	require.NoError(t, docs.Write(database.KeyWords, seed))

	_, err := engine.ProcessExchange(context.Background(), "cafe", "ek chai dena", "Hindi", sampleTasks())
	require.NoError(t, err)

	var words models.Words
	require.NoError(t, docs.Read(database.KeyWords, models.DefaultWords(), &words))

	byWord := map[string]models.WordEntry{}
	for _, entry := range words.UserUsed {
		byWord[entry.Word] = entry
	}
	// 0.95 + 0.1 caps at 1.0
	assert.Equal(t, 1.0, byWord["chai"].Strength)
	// first production starts at 0.5
	assert.Equal(t, 0.5, byWord["dhanyavad"].Strength)

	allWords := map[string]bool{}
	for _, entry := range words.All {
		allWords[entry.Word] = true
	}
	assert.True(t, allWords["chai"])
	assert.True(t, allWords["dhanyavad"])

	// produced words leave the passive list
	assert.Empty(t, words.SceneUsed)
}

func TestProcessExchangeAppendsConversation(t *testing.T) {
	engine, docs, _, completer := setupTestEngine(t)
	completer.response = sampleEvaluation

	_, err := engine.ProcessExchange(context.Background(), "cafe", "ek chai dena", "Hindi", sampleTasks())
	require.NoError(t, err)
	_, err = engine.ProcessExchange(context.Background(), "cafe", "dhanyavad", "Hindi", sampleTasks())
	require.NoError(t, err)

	var entries []models.ConversationEntry
	require.NoError(t, docs.Read(database.KeyConversations, []models.ConversationEntry{}, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "ek chai dena", entries[0].UserInput)
	assert.Equal(t, "dhanyavad", entries[1].UserInput)
	assert.Equal(t, 25, entries[0].XPGained)
	assert.NotEmpty(t, entries[0].ID)
	require.NotNil(t, entries[0].Evaluation)
	assert.Equal(t, "happy", entries[0].Evaluation.NPCResponse.Emotion)
}

func TestProcessExchangeServiceFailure(t *testing.T) {
	engine, _, progress, completer := setupTestEngine(t)
	completer.err = errors.New("service down")

	_, err := engine.ProcessExchange(context.Background(), "cafe", "ek chai dena", "Hindi", sampleTasks())
	require.Error(t, err)

	// nothing mutated on failure
	mem, err := progress.Get()
	require.NoError(t, err)
	assert.Zero(t, mem.XP)
}
