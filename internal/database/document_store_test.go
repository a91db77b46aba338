package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATA_DIR", t.TempDir())
	require.NoError(t, Connect())
	t.Cleanup(func() { Close() })
}

type testDoc struct {
	Name  string    `json:"name"`
	Count int       `json:"count"`
	Seen  time.Time `json:"seen"`
	Tags  []string  `json:"tags"`
}

func TestReadMissingWritesDefault(t *testing.T) {
	setupTestDB(t)
	store := NewDocumentStore()

	def := testDoc{Name: "fresh", Tags: []string{}}
	var got testDoc
	require.NoError(t, store.Read("missing", def, &got))
	assert.Equal(t, def, got)

	// default must now be persisted
	exists, err := store.Exists("missing")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestWriteReadRoundTrip(t *testing.T) {
	setupTestDB(t)
	store := NewDocumentStore()

	doc := testDoc{
		Name:  "roundtrip",
		Count: 7,
		Seen:  time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Tags:  []string{"a", "b"},
	}
	require.NoError(t, store.Write("doc", doc))

	var got testDoc
	require.NoError(t, store.Read("doc", testDoc{}, &got))
	assert.Equal(t, doc, got)
}

func TestCorruptDocumentSelfHeals(t *testing.T) {
	setupTestDB(t)
	store := NewDocumentStore()

	_, err := DB.Exec("INSERT INTO documents (key, data) VALUES ($1, $2)", "broken", "{not json")
	require.NoError(t, err)

	def := testDoc{Name: "healed"}
	var got testDoc
	require.NoError(t, store.Read("broken", def, &got))
	assert.Equal(t, "healed", got.Name)

	// the rewritten default must survive a second read
	var again testDoc
	require.NoError(t, store.Read("broken", testDoc{Name: "other"}, &again))
	assert.Equal(t, "healed", again.Name)
}

func TestWriteIsFullOverwrite(t *testing.T) {
	setupTestDB(t)
	store := NewDocumentStore()

	require.NoError(t, store.Write("doc", testDoc{Name: "first", Count: 3}))
	require.NoError(t, store.Write("doc", testDoc{Name: "second"}))

	var got testDoc
	require.NoError(t, store.Read("doc", testDoc{}, &got))
	assert.Equal(t, "second", got.Name)
	assert.Zero(t, got.Count)
}

func TestUpdateModifiesInPlace(t *testing.T) {
	setupTestDB(t)
	store := NewDocumentStore()

	var doc testDoc
	err := store.Update("counter", testDoc{}, &doc, func() error {
		doc.Count++
		return nil
	})
	require.NoError(t, err)

	err = store.Update("counter", testDoc{}, &doc, func() error {
		doc.Count++
		return nil
	})
	require.NoError(t, err)

	var got testDoc
	require.NoError(t, store.Read("counter", testDoc{}, &got))
	assert.Equal(t, 2, got.Count)
}

func TestListKeysAndDeleteByPrefix(t *testing.T) {
	setupTestDB(t)
	store := NewDocumentStore()

	require.NoError(t, store.Write("session:a", testDoc{Name: "a"}))
	require.NoError(t, store.Write("session:b", testDoc{Name: "b"}))
	require.NoError(t, store.Write("quiz:x", testDoc{Name: "x"}))

	keys, err := store.ListKeys("session:")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:a", "session:b"}, keys)

	docs, err := store.ReadAll("session:")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	n, err := store.DeleteByPrefix("session:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err = store.ListKeys("session:")
	require.NoError(t, err)
	assert.Empty(t, keys)

	// other prefixes untouched
	exists, err := store.Exists("quiz:x")
	require.NoError(t, err)
	assert.True(t, exists)
}
