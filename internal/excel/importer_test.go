package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/pkg/models"
)

func setupTestDocs(t *testing.T) *database.DocumentStore {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATA_DIR", t.TempDir())
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })
	return database.NewDocumentStore()
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "starter.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportWordsFromCSV(t *testing.T) {
	docs := setupTestDocs(t)
	path := writeCSV(t, "word,meaning,context\nchai,tea,ek chai dena\npani,water,\n")

	result, err := ImportWords(docs, DefaultImportConfig(path))
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 2, result.Added)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Errors)

	var words models.Words
	require.NoError(t, docs.Read(database.KeyWords, models.DefaultWords(), &words))
	require.Len(t, words.All, 2)
	assert.Equal(t, "chai", words.All[0].Word)
	assert.Equal(t, "tea", words.All[0].Meaning)
	assert.Equal(t, "ek chai dena", words.All[0].Context)
}

func TestImportSkipsDuplicates(t *testing.T) {
	docs := setupTestDocs(t)

	seed := models.DefaultWords()
	seed.All = []models.WordEntry{{Word: "chai", Meaning: "tea"}}
	require.NoError(t, docs.Write(database.KeyWords, seed))

	path := writeCSV(t, "word,meaning\nChai,tea\npani,water\npani,water again\n")

	result, err := ImportWords(docs, DefaultImportConfig(path))
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 2, result.Skipped)

	var words models.Words
	require.NoError(t, docs.Read(database.KeyWords, models.DefaultWords(), &words))
	assert.Len(t, words.All, 2)
}

func TestImportReportsBadRows(t *testing.T) {
	docs := setupTestDocs(t)
	path := writeCSV(t, "word,meaning\nchai,tea\n,missing word\norphan,\n")

	result, err := ImportWords(docs, DefaultImportConfig(path))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Len(t, result.Errors, 2)
}

func TestImportMissingFile(t *testing.T) {
	docs := setupTestDocs(t)
	_, err := ImportWords(docs, DefaultImportConfig(filepath.Join(t.TempDir(), "nope.xlsx")))
	assert.Error(t, err)
}
