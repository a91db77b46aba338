package models

// VocabularyItem is a word with its meaning as reported by the completion
// service, optionally with the sentence it appeared in
type VocabularyItem struct {
	Word            string `json:"word"`
	Meaning         string `json:"meaning"`
	ContextSentence string `json:"context_sentence,omitempty"`
}

// TurnEvaluation is the fluency block the tutor emits after every reply
type TurnEvaluation struct {
	Score         int              `json:"score"` // 0-100
	Feedback      string           `json:"feedback"`
	NewVocabulary []VocabularyItem `json:"new_vocabulary"`
	Topics        []string         `json:"topics"`
	Suggestions   []string         `json:"suggestions"`
}

// DefaultTurnEvaluation is used when the marker is missing or unparsable;
// a zero score keeps the turn out of the fluency trend.
func DefaultTurnEvaluation() TurnEvaluation {
	return TurnEvaluation{
		Feedback:      "Could not evaluate fluency this turn.",
		NewVocabulary: []VocabularyItem{},
		Topics:        []string{},
		Suggestions:   []string{},
	}
}
