package models

// Memory is the global progression document: XP, the level derived from
// it, and a raw tally of words encountered during scene practice.
type Memory struct {
	XP           int            `json:"xp"`
	Level        int            `json:"level"`
	Difficulty   string         `json:"difficulty"`
	WordsLearned map[string]int `json:"words_learned"`
}

// DefaultMemory returns the progression state of a brand-new learner
func DefaultMemory() *Memory {
	return &Memory{Level: 1, Difficulty: "beginner", WordsLearned: map[string]int{}}
}
