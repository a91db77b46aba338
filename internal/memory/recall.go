package memory

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
)

const (
	recallVocabCap     = 15
	recallWeakVocabCap = 8

	// entries below this mastery are offered as reinforcement candidates
	weakMasteryCeiling = 0.4
)

// BuildRecallContext decides whether prior knowledge is relevant to the
// incoming message and, if so, returns a compact recall block for prompt
// injection. Returns "" when the language has no profile or vocabulary
// yet, or when nothing known overlaps the message: recall is opt-in by
// relevance, not always-on. Matching is case-insensitive substring
// overlap.
func (s *Store) BuildRecallContext(message, language string) (string, error) {
	knowledge, err := s.LoadKnowledge()
	if err != nil {
		return "", err
	}

	profile, ok := knowledge.Languages[language]
	if !ok || len(profile.VocabularyMastery) == 0 {
		return "", nil
	}

	msgLower := strings.ToLower(message)

	var matchedWords []string
	for word := range profile.VocabularyMastery {
		if strings.Contains(msgLower, strings.ToLower(word)) {
			matchedWords = append(matchedWords, word)
		}
	}
	sort.Strings(matchedWords)

	var matchedTopics []string
	for _, topic := range append(append([]string{}, profile.StrongTopics...), profile.WeakTopics...) {
		if strings.Contains(msgLower, strings.ToLower(topic)) {
			matchedTopics = append(matchedTopics, topic)
		}
	}

	if len(matchedWords) == 0 && len(matchedTopics) == 0 {
		log.Printf("[memory/recall] no overlap detected, skipping recall")
		return "", nil
	}
	log.Printf("[memory/recall] overlap found: %d words, %d topics", len(matchedWords), len(matchedTopics))

	var parts []string
	parts = append(parts, "[LEARNER MEMORY — AUTO-RECALLED]")
	parts = append(parts, fmt.Sprintf("Language: %s | Overall Fluency: %d/100 | Sessions: %d | Messages: %d",
		language, profile.AvgFluency, profile.TotalSessions, profile.TotalMessages))

	if len(matchedWords) > 0 {
		if len(matchedWords) > recallVocabCap {
			matchedWords = matchedWords[:recallVocabCap]
		}
		details := make([]string, 0, len(matchedWords))
		for _, word := range matchedWords {
			entry := profile.VocabularyMastery[word]
			meaning := entry.Meaning
			if meaning == "" {
				meaning = "?"
			}
			details = append(details, fmt.Sprintf("%q (%s, mastery %d%%, %d× used)",
				word, meaning, int(math.Round(entry.Mastery*100)), entry.Uses))
		}
		parts = append(parts, "Relevant known vocabulary: "+strings.Join(details, ", "))
	}

	if len(profile.WeakTopics) > 0 {
		parts = append(parts, "Weak areas needing reinforcement: "+strings.Join(profile.WeakTopics, ", "))
	}
	if len(profile.StrongTopics) > 0 {
		parts = append(parts, "Already confident in: "+strings.Join(profile.StrongTopics, ", "))
	}

	// lowest-mastery vocabulary, for targeted practice
	type weakEntry struct {
		word    string
		mastery float64
		meaning string
	}
	var weak []weakEntry
	for word, entry := range profile.VocabularyMastery {
		if entry.Mastery < weakMasteryCeiling {
			weak = append(weak, weakEntry{word, entry.Mastery, entry.Meaning})
		}
	}
	sort.Slice(weak, func(i, j int) bool {
		if weak[i].mastery != weak[j].mastery {
			return weak[i].mastery < weak[j].mastery
		}
		return weak[i].word < weak[j].word
	})
	if len(weak) > recallWeakVocabCap {
		weak = weak[:recallWeakVocabCap]
	}
	if len(weak) > 0 {
		details := make([]string, 0, len(weak))
		for _, w := range weak {
			meaning := w.meaning
			if meaning == "" {
				meaning = "?"
			}
			details = append(details, fmt.Sprintf("%q (%s, %d%%)", w.word, meaning, int(math.Round(w.mastery*100))))
		}
		parts = append(parts, "Low-mastery vocabulary to reinforce if relevant: "+strings.Join(details, ", "))
	}

	parts = append(parts, "[END LEARNER MEMORY]")
	return strings.Join(parts, "\n"), nil
}
