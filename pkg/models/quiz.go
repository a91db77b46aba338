package models

import "time"

// Quiz status values. A quiz is created pending and flips to completed
// exactly once; evaluation of a completed quiz is rejected.
const (
	QuizStatusPending   = "pending"
	QuizStatusCompleted = "completed"
)

// QuestionType tags the question variant
type QuestionType string

const (
	QuestionListeningMCQ QuestionType = "listening_mcq"
	QuestionSpeaking     QuestionType = "speaking"
)

// Question is a tagged union over the two question variants. The variant
// fields are split by type; grading and normalization switch on Type.
type Question struct {
	ID   int          `json:"id"`
	Type QuestionType `json:"type"`

	// listening_mcq: a spoken word and four answer options
	Word          string   `json:"word,omitempty"`
	WordRomanized string   `json:"word_romanized,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Options       []string `json:"options,omitempty"`

	// speaking: an English sentence the learner translates aloud
	SentenceEN              string           `json:"sentence_en,omitempty"`
	ExpectedAnswer          string           `json:"expected_answer,omitempty"`
	ExpectedAnswerRomanized string           `json:"expected_answer_romanized,omitempty"`
	AcceptableVariations    []string         `json:"acceptable_variations,omitempty"`
	HintWords               []VocabularyItem `json:"hint_words,omitempty"`

	// text handed to TTS by the caller; never interpreted by the engine
	AudioText string `json:"audio_text,omitempty"`
}

// Answer is one submitted answer keyed by question ID
type Answer struct {
	QuestionID int    `json:"questionId"`
	Answer     string `json:"answer"`
}

// QuestionResult is the graded outcome for one question
type QuestionResult struct {
	QuestionID       int          `json:"questionId"`
	Type             QuestionType `json:"type"`
	Word             string       `json:"word,omitempty"`
	WordRomanized    string       `json:"word_romanized,omitempty"`
	SentenceEN       string       `json:"sentence_en,omitempty"`
	UserAnswer       string       `json:"user_answer"`
	CorrectAnswer    string       `json:"correct_answer,omitempty"`
	ExpectedAnswer   string       `json:"expected_answer,omitempty"`
	CorrectedAnswer  string       `json:"corrected_answer,omitempty"`
	PronunciationTip string       `json:"pronunciation_tip,omitempty"`
	Options          []string     `json:"options,omitempty"`
	Correct          bool         `json:"correct"`
	Score            int          `json:"score"` // 0-100
	Feedback         string       `json:"feedback"`
}

// QuizResults is attached to the quiz document when it completes
type QuizResults struct {
	QuestionResults []QuestionResult `json:"question_results"`
	TotalScore      int              `json:"total_score"`
	CorrectCount    int              `json:"correct_count"`
	TotalQuestions  int              `json:"total_questions"`
	XPEarned        int              `json:"xp_earned"`
	LeveledUp       bool             `json:"leveled_up"`
	GradedAt        time.Time        `json:"graded_at"`
}

// QuizMetadata is authored by the completion service alongside the questions
type QuizMetadata struct {
	Theme               string `json:"theme"`
	FocusArea           string `json:"focus_area"`
	EstimatedDifficulty string `json:"estimated_difficulty"`
}

// LearnerSnapshot freezes the learner's standing at generation time
type LearnerSnapshot struct {
	XP         int `json:"xp"`
	Level      int `json:"level"`
	VocabCount int `json:"vocab_count"`
	AvgFluency int `json:"avg_fluency"`
}

// Quiz is the persisted quiz document. Answers and Results stay nil while
// the quiz is pending.
type Quiz struct {
	QuizID          string          `json:"quizId"`
	Language        string          `json:"language"`
	Level           int             `json:"level"`
	Difficulty      string          `json:"difficulty"`
	NumQuestions    int             `json:"num_questions"`
	Questions       []Question      `json:"questions"`
	Metadata        QuizMetadata    `json:"quiz_metadata"`
	LearnerSnapshot LearnerSnapshot `json:"learner_snapshot"`
	Status          string          `json:"status"`
	Answers         []Answer        `json:"answers,omitempty"`
	Results         *QuizResults    `json:"results,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

// QuizSummary is the history-list view of a quiz
type QuizSummary struct {
	QuizID       string     `json:"quizId"`
	Language     string     `json:"language"`
	Level        int        `json:"level"`
	Difficulty   string     `json:"difficulty"`
	NumQuestions int        `json:"num_questions"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	TotalScore   *int       `json:"total_score,omitempty"`
	XPEarned     *int       `json:"xp_earned,omitempty"`
	CorrectCount *int       `json:"correct_count,omitempty"`
}
