package memory

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/pkg/models"
)

func knowledgeWith(language string, vocab map[string]*models.VocabularyEntry) *models.Knowledge {
	knowledge := models.DefaultKnowledge()
	profile := models.NewLanguageProfile()
	profile.VocabularyMastery = vocab
	knowledge.Languages[language] = profile
	return knowledge
}

func TestRecallEmptyWithoutProfile(t *testing.T) {
	store := setupTestStore(t)

	block, err := store.BuildRecallContext("mujhe chai chahiye", "Hindi")
	require.NoError(t, err)
	assert.Empty(t, block)
}

func TestRecallEmptyWithoutOverlap(t *testing.T) {
	store := setupTestStore(t)
	knowledge := knowledgeWith("Hindi", map[string]*models.VocabularyEntry{
		"pani": {Meaning: "water", Mastery: 0.8},
	})
	require.NoError(t, store.docs.Write(database.KeyKnowledge, knowledge))

	block, err := store.BuildRecallContext("good morning", "Hindi")
	require.NoError(t, err)
	assert.Empty(t, block)
}

func TestRecallMatchesSubstrings(t *testing.T) {
	store := setupTestStore(t)
	knowledge := knowledgeWith("Hindi", map[string]*models.VocabularyEntry{
		"chai": {Meaning: "tea", Mastery: 0.9, Uses: 4},
		"pani": {Meaning: "water", Mastery: 0.2, Uses: 1},
	})
	require.NoError(t, store.docs.Write(database.KeyKnowledge, knowledge))

	block, err := store.BuildRecallContext("I want CHAI please", "Hindi")
	require.NoError(t, err)
	assert.Contains(t, block, "[LEARNER MEMORY — AUTO-RECALLED]")
	assert.Contains(t, block, "chai")
	assert.Contains(t, block, "tea")
	// weak vocabulary rides along even when unmatched
	assert.Contains(t, block, "pani")
}

func TestRecallCapsMatchedWords(t *testing.T) {
	store := setupTestStore(t)
	vocab := make(map[string]*models.VocabularyEntry)
	var message strings.Builder
	for i := 0; i < recallVocabCap+10; i++ {
		word := fmt.Sprintf("word%02d", i)
		vocab[word] = &models.VocabularyEntry{Meaning: "m", Mastery: 0.9}
		message.WriteString(word)
		message.WriteString(" ")
	}
	knowledge := knowledgeWith("Hindi", vocab)
	require.NoError(t, store.docs.Write(database.KeyKnowledge, knowledge))

	block, err := store.BuildRecallContext(message.String(), "Hindi")
	require.NoError(t, err)
	assert.Equal(t, recallVocabCap, strings.Count(block, "word"))
}

func TestRecallCapsWeakVocabulary(t *testing.T) {
	store := setupTestStore(t)
	vocab := map[string]*models.VocabularyEntry{
		"chai": {Meaning: "tea", Mastery: 0.9},
	}
	for i := 0; i < recallWeakVocabCap+5; i++ {
		vocab[fmt.Sprintf("weak%02d", i)] = &models.VocabularyEntry{Meaning: "m", Mastery: 0.1}
	}
	knowledge := knowledgeWith("Hindi", vocab)
	require.NoError(t, store.docs.Write(database.KeyKnowledge, knowledge))

	block, err := store.BuildRecallContext("chai", "Hindi")
	require.NoError(t, err)
	assert.Equal(t, recallWeakVocabCap, strings.Count(block, "weak"))
}
