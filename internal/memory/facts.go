package memory

import (
	"log"
	"math"
	"time"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/pkg/models"
)

const (
	// masteryIncrement is added on each reinforcement; mastery never
	// decreases and never exceeds 1.0
	masteryIncrement = 0.08

	// fluencyTrendCap bounds the trend to the most recent scores
	fluencyTrendCap = 100

	// promote/demote thresholds form a hysteresis band: scores in
	// between move no topic in either direction
	topicPromoteScore = 70
	topicDemoteScore  = 40

	// context sentences kept per vocabulary entry
	vocabContextCap = 5
)

// LoadKnowledge returns the facts memory document
func (s *Store) LoadKnowledge() (*models.Knowledge, error) {
	var knowledge models.Knowledge
	if err := s.docs.Read(database.KeyKnowledge, models.DefaultKnowledge(), &knowledge); err != nil {
		return nil, err
	}
	if knowledge.Languages == nil {
		knowledge.Languages = map[string]*models.LanguageProfile{}
	}
	return &knowledge, nil
}

// MergeFacts folds one evaluated turn into the durable knowledge profile
// for the language. Called after every assistant reply; every step is
// safe against repeated calls with the same input.
func (s *Store) MergeFacts(session *models.Session, eval models.TurnEvaluation, language string) (*models.Knowledge, error) {
	now := time.Now().UTC()

	var knowledge models.Knowledge
	err := s.docs.Update(database.KeyKnowledge, models.DefaultKnowledge(), &knowledge, func() error {
		if knowledge.Languages == nil {
			knowledge.Languages = map[string]*models.LanguageProfile{}
		}

		profile, ok := knowledge.Languages[language]
		if !ok {
			profile = models.NewLanguageProfile()
			knowledge.Languages[language] = profile
		}
		if profile.VocabularyMastery == nil {
			profile.VocabularyMastery = map[string]*models.VocabularyEntry{}
		}

		// session/message counts are rederived from the session records
		// rather than incremented, so they self-heal from missed merges
		summaries, err := s.ListSessions()
		if err != nil {
			return err
		}
		profile.TotalSessions = 0
		profile.TotalMessages = 0
		for _, summary := range summaries {
			if summary.Language != language {
				continue
			}
			profile.TotalSessions++
			profile.TotalMessages += summary.MessageCount
		}

		if eval.Score > 0 {
			profile.FluencyTrend = append(profile.FluencyTrend, eval.Score)
			if len(profile.FluencyTrend) > fluencyTrendCap {
				profile.FluencyTrend = profile.FluencyTrend[len(profile.FluencyTrend)-fluencyTrendCap:]
			}
			sum := 0
			for _, score := range profile.FluencyTrend {
				sum += score
			}
			profile.AvgFluency = int(math.Round(float64(sum) / float64(len(profile.FluencyTrend))))
		}

		for _, item := range eval.NewVocabulary {
			if item.Word == "" {
				continue
			}
			entry, ok := profile.VocabularyMastery[item.Word]
			if !ok {
				entry = &models.VocabularyEntry{Meaning: item.Meaning, FirstSeen: now}
				profile.VocabularyMastery[item.Word] = entry
			}
			entry.Uses++
			entry.Mastery = math.Min(1.0, entry.Mastery+masteryIncrement)
			entry.LastUsed = now
			if entry.Meaning == "" && item.Meaning != "" {
				entry.Meaning = item.Meaning
			}
			if item.ContextSentence != "" && !contains(entry.Contexts, item.ContextSentence) {
				entry.Contexts = append(entry.Contexts, item.ContextSentence)
				if len(entry.Contexts) > vocabContextCap {
					entry.Contexts = entry.Contexts[len(entry.Contexts)-vocabContextCap:]
				}
			}
		}

		for _, topic := range eval.Topics {
			if topic == "" {
				continue
			}
			inStrong := contains(profile.StrongTopics, topic)
			inWeak := contains(profile.WeakTopics, topic)

			// new topics start out weak
			if !inStrong && !inWeak {
				profile.WeakTopics = append(profile.WeakTopics, topic)
				inWeak = true
			}

			if eval.Score >= topicPromoteScore && inWeak {
				profile.WeakTopics = remove(profile.WeakTopics, topic)
				if !inStrong {
					profile.StrongTopics = append(profile.StrongTopics, topic)
				}
			}

			if eval.Score < topicDemoteScore && inStrong {
				profile.StrongTopics = remove(profile.StrongTopics, topic)
				if !contains(profile.WeakTopics, topic) {
					profile.WeakTopics = append(profile.WeakTopics, topic)
				}
			}
		}

		knowledge.LastUpdated = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[memory] merged facts for %s (sessions=%d, vocab=%d)",
		language, knowledge.Languages[language].TotalSessions,
		len(knowledge.Languages[language].VocabularyMastery))
	return &knowledge, nil
}

// ResetKnowledge restores the facts memory document to its default shape
func (s *Store) ResetKnowledge() error {
	return s.docs.Write(database.KeyKnowledge, models.DefaultKnowledge())
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
