package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/pkg/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATA_DIR", t.TempDir())
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })
	return NewStore(database.NewDocumentStore())
}

func TestSessionRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	session := NewSession("", "Hindi")
	require.NotEmpty(t, session.ID)
	session.Messages = append(session.Messages,
		models.ChatMessage{Role: "user", Content: "namaste", Timestamp: session.CreatedAt},
	)
	session.FluencyScores = append(session.FluencyScores, 60, 80)
	require.NoError(t, store.SaveSession(session))

	got, err := store.LoadSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "Hindi", got.Language)
	assert.Equal(t, []int{60, 80}, got.FluencyScores)
	assert.Len(t, got.Messages, 1)
}

func TestSaveSessionRecomputesAverage(t *testing.T) {
	store := setupTestStore(t)

	session := NewSession("avg-check", "Hindi")
	session.FluencyScores = []int{50, 60, 71}
	session.AvgFluency = 999 // stale value must be overwritten
	require.NoError(t, store.SaveSession(session))

	got, err := store.LoadSession("avg-check")
	require.NoError(t, err)
	assert.Equal(t, 60, got.AvgFluency)
}

func TestLoadSessionNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.LoadSession("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestListSessionsNewestFirst(t *testing.T) {
	store := setupTestStore(t)

	older := NewSession("older", "Hindi")
	require.NoError(t, store.SaveSession(older))
	newer := NewSession("newer", "Japanese")
	require.NoError(t, store.SaveSession(newer))

	summaries, err := store.ListSessions()
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "newer", summaries[0].ID)
	assert.Equal(t, "older", summaries[1].ID)
}

func TestDeleteSessions(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.SaveSession(NewSession("a", "Hindi")))
	require.NoError(t, store.SaveSession(NewSession("b", "Hindi")))

	require.NoError(t, store.DeleteSession("a"))
	_, err := store.LoadSession("a")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, store.DeleteSession("a"), ErrSessionNotFound)

	n, err := store.DeleteAllSessions()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
