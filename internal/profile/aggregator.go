package profile

import (
	"math"
	"sort"
	"strings"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/internal/memory"
	"github.com/example/lingobot/internal/progression"
	"github.com/example/lingobot/pkg/models"
)

const (
	// strength estimate per recorded use in the progression tally
	tallyStrengthStep = 0.15

	// vocabulary surfaced only through recent sessions gets at least
	// this strength
	sessionStrengthFloor = 0.3

	recentSessionCount = 5
	contextSentenceCap = 20
	contextsPerWordCap = 3
)

// source labels for aggregated vocabulary, in layering order
const (
	SourceUserUsed     = "user_used"
	SourceSceneUsed    = "scene_used"
	SourceAll          = "all"
	SourceWordsLearned = "words_learned"
	SourceKnowledge    = "knowledge"
	SourceSession      = "session"
)

// Aggregator builds a unified learner profile out of the exposure log,
// the progression tally, the facts memory and recent sessions.
type Aggregator struct {
	docs   *database.DocumentStore
	memory *memory.Store
}

// New creates an aggregator over the shared document store
func New(docs *database.DocumentStore, mem *memory.Store) *Aggregator {
	return &Aggregator{docs: docs, memory: mem}
}

// Load merges every vocabulary source into one profile for the language.
// Sources are folded in a fixed order and only fill fields that earlier
// layers left unset; strength estimates from the tally and the mastery
// map are merged by taking the maximum. The returned vocabulary is
// filtered to entries with a known meaning and sorted weakest-first.
func (a *Aggregator) Load(language string) (*models.LearnerProfile, error) {
	var words models.Words
	if err := a.docs.Read(database.KeyWords, models.DefaultWords(), &words); err != nil {
		return nil, err
	}
	var mem models.Memory
	if err := a.docs.Read(database.KeyMemory, models.DefaultMemory(), &mem); err != nil {
		return nil, err
	}
	knowledge, err := a.memory.LoadKnowledge()
	if err != nil {
		return nil, err
	}
	var conversations []models.ConversationEntry
	if err := a.docs.Read(database.KeyConversations, []models.ConversationEntry{}, &conversations); err != nil {
		return nil, err
	}

	vocab := map[string]*models.ProfileVocab{}

	fillLayer := func(entries []models.WordEntry, source string) {
		for _, entry := range entries {
			if entry.Word == "" {
				continue
			}
			existing, ok := vocab[entry.Word]
			if !ok {
				added := &models.ProfileVocab{
					Word:     entry.Word,
					Meaning:  entry.Meaning,
					Strength: entry.Strength,
					Source:   source,
				}
				if entry.Context != "" {
					added.Contexts = []string{entry.Context}
				}
				vocab[entry.Word] = added
				continue
			}
			if existing.Meaning == "" {
				existing.Meaning = entry.Meaning
			}
			if existing.Strength == 0 {
				existing.Strength = entry.Strength
			}
			addContext(existing, entry.Context)
		}
	}
	fillLayer(words.UserUsed, SourceUserUsed)
	fillLayer(words.SceneUsed, SourceSceneUsed)
	fillLayer(words.All, SourceAll)

	for word, count := range mem.WordsLearned {
		if word == "" || count <= 0 {
			continue
		}
		estimate := math.Min(1, float64(count)*tallyStrengthStep)
		existing, ok := vocab[word]
		if !ok {
			vocab[word] = &models.ProfileVocab{Word: word, Strength: estimate, Source: SourceWordsLearned}
			continue
		}
		existing.Strength = math.Max(existing.Strength, estimate)
	}

	profile := &models.LearnerProfile{
		Memory:           &mem,
		Level:            progression.Level(mem.XP),
		ContextSentences: []string{},
		ChatTopics:       []string{},
		WeakTopics:       []string{},
		StrongTopics:     []string{},
	}
	profile.Difficulty = progression.Difficulty(profile.Level)

	if langProfile, ok := knowledge.Languages[language]; ok {
		for word, entry := range langProfile.VocabularyMastery {
			if word == "" {
				continue
			}
			existing, ok := vocab[word]
			if !ok {
				vocab[word] = &models.ProfileVocab{
					Word:     word,
					Meaning:  entry.Meaning,
					Strength: entry.Mastery,
					Contexts: append([]string{}, entry.Contexts...),
					Source:   SourceKnowledge,
				}
				continue
			}
			if existing.Meaning == "" {
				existing.Meaning = entry.Meaning
			}
			existing.Strength = math.Max(existing.Strength, entry.Mastery)
			for _, sentence := range entry.Contexts {
				addContext(existing, sentence)
			}
		}
		profile.WeakTopics = append(profile.WeakTopics, langProfile.WeakTopics...)
		profile.StrongTopics = append(profile.StrongTopics, langProfile.StrongTopics...)
		profile.AvgFluency = langProfile.AvgFluency
		profile.TotalSessions = langProfile.TotalSessions
	}

	// mine literal example sentences from the interaction log
	for _, entry := range conversations {
		sentence := strings.TrimSpace(entry.UserInput)
		if sentence == "" {
			continue
		}
		profile.ContextSentences = append(profile.ContextSentences, sentence)
		lower := strings.ToLower(sentence)
		for word, item := range vocab {
			if strings.Contains(lower, strings.ToLower(word)) {
				addContext(item, sentence)
			}
		}
	}
	if len(profile.ContextSentences) > contextSentenceCap {
		profile.ContextSentences = profile.ContextSentences[len(profile.ContextSentences)-contextSentenceCap:]
	}

	if err := a.foldRecentSessions(language, vocab, profile); err != nil {
		return nil, err
	}

	list := make([]models.ProfileVocab, 0, len(vocab))
	for _, item := range vocab {
		if item.Meaning == "" {
			continue
		}
		list = append(list, *item)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Strength != list[j].Strength {
			return list[i].Strength < list[j].Strength
		}
		return list[i].Word < list[j].Word
	})

	profile.Vocabulary = list
	profile.VocabCount = len(list)
	return profile, nil
}

// foldRecentSessions adds topics and vocabulary from the latest sessions
// for the language. Session-sourced vocabulary carries little signal on
// its own, so it only floors strength rather than overriding it.
func (a *Aggregator) foldRecentSessions(language string, vocab map[string]*models.ProfileVocab, profile *models.LearnerProfile) error {
	summaries, err := a.memory.ListSessions()
	if err != nil {
		return err
	}

	taken := 0
	for _, summary := range summaries {
		if summary.Language != language {
			continue
		}
		if taken >= recentSessionCount {
			break
		}
		taken++

		session, err := a.memory.LoadSession(summary.ID)
		if err != nil {
			return err
		}
		for _, topic := range session.TopicsCovered {
			if topic != "" && !containsString(profile.ChatTopics, topic) {
				profile.ChatTopics = append(profile.ChatTopics, topic)
			}
		}
		for _, used := range session.VocabularyUsed {
			if used.Word == "" {
				continue
			}
			existing, ok := vocab[used.Word]
			if !ok {
				vocab[used.Word] = &models.ProfileVocab{
					Word:     used.Word,
					Meaning:  used.Meaning,
					Strength: sessionStrengthFloor,
					Source:   SourceSession,
				}
				continue
			}
			if existing.Meaning == "" {
				existing.Meaning = used.Meaning
			}
			if existing.Strength < sessionStrengthFloor {
				existing.Strength = sessionStrengthFloor
			}
		}
	}
	return nil
}

func addContext(item *models.ProfileVocab, sentence string) {
	if sentence == "" || len(item.Contexts) >= contextsPerWordCap {
		return
	}
	if containsString(item.Contexts, sentence) {
		return
	}
	item.Contexts = append(item.Contexts, sentence)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
