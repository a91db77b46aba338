package progression

import (
	"log"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/pkg/models"
)

// LevelThresholds lists the XP required to reach each level. Level is
// always the highest threshold index not exceeding current XP; there is
// no level-down path.
var LevelThresholds = []int{0, 100, 250, 500, 800, 1200, 1700, 2300, 3000, 4000}

// Level returns the level for the given XP total
func Level(xp int) int {
	level := 1
	for i := len(LevelThresholds) - 1; i >= 0; i-- {
		if xp >= LevelThresholds[i] {
			level = i + 1
			break
		}
	}
	return level
}

// NextLevelXP returns the XP threshold of the next level, or 0 at max level
func NextLevelXP(level int) int {
	if level >= len(LevelThresholds) {
		return 0
	}
	return LevelThresholds[level]
}

// Difficulty maps a level onto one of the four difficulty tiers
func Difficulty(level int) string {
	switch {
	case level <= 2:
		return "beginner"
	case level <= 4:
		return "intermediate"
	case level <= 7:
		return "advanced"
	default:
		return "expert"
	}
}

// Store persists the global progression document
type Store struct {
	docs *database.DocumentStore
}

// NewStore creates a progression store backed by docs
func NewStore(docs *database.DocumentStore) *Store {
	return &Store{docs: docs}
}

// Get returns the current progression state
func (s *Store) Get() (*models.Memory, error) {
	var memory models.Memory
	if err := s.docs.Read(database.KeyMemory, models.DefaultMemory(), &memory); err != nil {
		return nil, err
	}
	return &memory, nil
}

// AddXP applies earned XP and rederives level and difficulty. Negative
// amounts are ignored; XP never decreases outside Reset. Reports whether
// the learner crossed a level threshold.
func (s *Store) AddXP(amount int) (*models.Memory, bool, error) {
	if amount < 0 {
		amount = 0
	}

	var memory models.Memory
	leveledUp := false
	err := s.docs.Update(database.KeyMemory, models.DefaultMemory(), &memory, func() error {
		oldLevel := Level(memory.XP)
		memory.XP += amount
		memory.Level = Level(memory.XP)
		memory.Difficulty = Difficulty(memory.Level)
		leveledUp = memory.Level > oldLevel
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if leveledUp {
		log.Printf("[progression] leveled up to %d (%s) at %d XP", memory.Level, memory.Difficulty, memory.XP)
	}
	return &memory, leveledUp, nil
}

// RecordWords bumps the raw learned-word tally for each word
func (s *Store) RecordWords(words []string) error {
	if len(words) == 0 {
		return nil
	}
	var memory models.Memory
	return s.docs.Update(database.KeyMemory, models.DefaultMemory(), &memory, func() error {
		if memory.WordsLearned == nil {
			memory.WordsLearned = map[string]int{}
		}
		for _, w := range words {
			if w == "" {
				continue
			}
			memory.WordsLearned[w]++
		}
		return nil
	})
}

// Reset restores the progression document to its default state
func (s *Store) Reset() error {
	return s.docs.Write(database.KeyMemory, models.DefaultMemory())
}
