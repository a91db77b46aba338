package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/internal/memory"
	"github.com/example/lingobot/internal/progression"
	"github.com/example/lingobot/internal/quiz"
	"github.com/example/lingobot/internal/streak"
	"github.com/example/lingobot/pkg/models"
)

func setupTestService(t *testing.T) (*Service, *database.DocumentStore) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATA_DIR", t.TempDir())
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })

	docs := database.NewDocumentStore()
	service := NewService(docs,
		memory.NewStore(docs),
		quiz.NewStore(docs),
		streak.NewStore(docs),
		progression.NewStore(docs))
	return service, docs
}

func TestOverviewEmptyLearner(t *testing.T) {
	service, _ := setupTestService(t)

	overview, err := service.Overview()
	require.NoError(t, err)
	assert.Equal(t, 1, overview.XP.Level)
	assert.Equal(t, "beginner", overview.XP.Difficulty)
	assert.Equal(t, 100, overview.XP.NextLevelXP)
	assert.Zero(t, overview.Words.Total)
	assert.Empty(t, overview.Languages)
	assert.Zero(t, overview.Quizzes.Total)
	assert.Zero(t, overview.Streak.Current)
}

func TestOverviewXPProgress(t *testing.T) {
	service, docs := setupTestService(t)

	mem := models.DefaultMemory()
	mem.XP = 50
	require.NoError(t, docs.Write(database.KeyMemory, mem))

	overview, err := service.Overview()
	require.NoError(t, err)
	assert.Equal(t, 50, overview.XP.XPToNext)
	assert.Equal(t, 50, overview.XP.ProgressPct)
}

func TestOverviewCountsMasteredWords(t *testing.T) {
	service, docs := setupTestService(t)

	words := models.DefaultWords()
	words.All = []models.WordEntry{{Word: "a"}, {Word: "b"}, {Word: "c"}}
	words.UserUsed = []models.WordEntry{{Word: "a"}}
	require.NoError(t, docs.Write(database.KeyWords, words))

	knowledge := models.DefaultKnowledge()
	profile := models.NewLanguageProfile()
	profile.VocabularyMastery = map[string]*models.VocabularyEntry{
		"a": {Mastery: 0.9},
		"b": {Mastery: 0.7},
		"c": {Mastery: 0.3},
	}
	knowledge.Languages["Hindi"] = profile
	require.NoError(t, docs.Write(database.KeyKnowledge, knowledge))

	overview, err := service.Overview()
	require.NoError(t, err)
	assert.Equal(t, 3, overview.Words.Total)
	assert.Equal(t, 2, overview.Words.Mastered)
	assert.Equal(t, 1, overview.Words.UserUsed)
	require.Len(t, overview.Languages, 1)
	assert.Equal(t, "Hindi", overview.Languages[0].Language)
	assert.Equal(t, 3, overview.Languages[0].VocabCount)
}

func TestOverviewQuizBlock(t *testing.T) {
	service, docs := setupTestService(t)
	quizzes := quiz.NewStore(docs)

	now := time.Now().UTC()
	pending := &models.Quiz{QuizID: "quiz_a", Status: models.QuizStatusPending, CreatedAt: now.Add(-2 * time.Hour)}
	require.NoError(t, quizzes.Save(pending))

	old := &models.Quiz{
		QuizID: "quiz_b", Status: models.QuizStatusCompleted, CreatedAt: now.Add(-time.Hour),
		Results: &models.QuizResults{TotalScore: 40},
	}
	require.NoError(t, quizzes.Save(old))

	latest := &models.Quiz{
		QuizID: "quiz_c", Status: models.QuizStatusCompleted, CreatedAt: now,
		Results: &models.QuizResults{TotalScore: 80},
	}
	require.NoError(t, quizzes.Save(latest))

	overview, err := service.Overview()
	require.NoError(t, err)
	assert.Equal(t, 3, overview.Quizzes.Total)
	assert.Equal(t, 2, overview.Quizzes.Completed)
	assert.Equal(t, 60, overview.Quizzes.AvgScore)
	require.NotNil(t, overview.Quizzes.Last)
	assert.Equal(t, "quiz_c", overview.Quizzes.Last.QuizID)
}

func TestResetClearsEverything(t *testing.T) {
	service, docs := setupTestService(t)

	mem := models.DefaultMemory()
	mem.XP = 500
	require.NoError(t, docs.Write(database.KeyMemory, mem))

	sessions := memory.NewStore(docs)
	require.NoError(t, sessions.SaveSession(memory.NewSession("s1", "Hindi")))

	quizzes := quiz.NewStore(docs)
	require.NoError(t, quizzes.Save(&models.Quiz{QuizID: "quiz_x", Status: models.QuizStatusPending}))

	streaks := streak.NewStore(docs)
	_, err := streaks.RecordHit()
	require.NoError(t, err)

	require.NoError(t, service.Reset())

	overview, err := service.Overview()
	require.NoError(t, err)
	assert.Zero(t, overview.XP.XP)
	assert.Equal(t, 1, overview.XP.Level)
	assert.Zero(t, overview.Quizzes.Total)
	assert.Empty(t, overview.RecentSessions)
	assert.Zero(t, overview.Streak.Current)
	assert.Zero(t, overview.Streak.TodayHits)

	keys, err := docs.ListKeys(database.SessionKeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
