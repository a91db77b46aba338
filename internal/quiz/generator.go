package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/lingobot/internal/profile"
	"github.com/example/lingobot/pkg/models"
)

const (
	minQuestions     = 4
	maxQuestions     = 8
	defaultQuestions = 6

	// share of target words drawn from the weak half of the vocabulary
	weakShare = 0.7

	// entries below this strength count as the weak half
	weakStrengthThreshold = 0.5

	mcqOptionCount    = 4
	optionPlaceholder = "(no option)"
)

// ErrInsufficientVocabulary is returned when the learner has too few
// words with known meanings to build a quiz from
var ErrInsufficientVocabulary = errors.New("not enough vocabulary to generate a quiz")

// Completer is the slice of the completion client the quiz lifecycle needs
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userMessage string, out any) error
}

// Generator builds adaptive quizzes over the learner's weakest vocabulary
type Generator struct {
	profiles *profile.Aggregator
	store    *Store
	ai       Completer
}

// NewGenerator wires a quiz generator
func NewGenerator(profiles *profile.Aggregator, store *Store, completer Completer) *Generator {
	return &Generator{profiles: profiles, store: store, ai: completer}
}

// generatedQuiz is the raw shape the completion service returns
type generatedQuiz struct {
	Questions []models.Question   `json:"questions"`
	Metadata  models.QuizMetadata `json:"quiz_metadata"`
}

// Generate authors, normalizes and persists a new pending quiz. The
// question count is clamped to [4, 8]; zero means the default of 6.
func (g *Generator) Generate(ctx context.Context, language string, numQuestions int) (*models.Quiz, error) {
	if numQuestions == 0 {
		numQuestions = defaultQuestions
	}
	if numQuestions < minQuestions {
		numQuestions = minQuestions
	}
	if numQuestions > maxQuestions {
		numQuestions = maxQuestions
	}

	learner, err := g.profiles.Load(language)
	if err != nil {
		return nil, err
	}
	if len(learner.Vocabulary) < minQuestions {
		return nil, ErrInsufficientVocabulary
	}

	targets := selectTargetWords(learner.Vocabulary, numQuestions)
	system, user := buildGenerationPrompt(language, numQuestions, learner, targets)

	var generated generatedQuiz
	if err := g.ai.CompleteJSON(ctx, system, user, &generated); err != nil {
		return nil, fmt.Errorf("failed to generate quiz: %v", err)
	}
	if len(generated.Questions) == 0 {
		return nil, fmt.Errorf("failed to generate quiz: no questions returned")
	}

	quiz := &models.Quiz{
		QuizID:       "quiz_" + uuid.NewString(),
		Language:     language,
		Level:        learner.Level,
		Difficulty:   learner.Difficulty,
		NumQuestions: len(generated.Questions),
		Questions:    normalizeQuestions(generated.Questions),
		Metadata:     generated.Metadata,
		LearnerSnapshot: models.LearnerSnapshot{
			XP:         learner.Memory.XP,
			Level:      learner.Level,
			VocabCount: learner.VocabCount,
			AvgFluency: learner.AvgFluency,
		},
		Status:    models.QuizStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := g.store.Save(quiz); err != nil {
		return nil, err
	}
	log.Printf("[quiz] generated %s: %d questions for %s (level %d)",
		quiz.QuizID, quiz.NumQuestions, language, quiz.Level)
	return quiz, nil
}

// selectTargetWords picks the word set the quiz is authored around:
// mostly from the weak half of the ranking, topped up from the strong
// half, preserving the weakest-first order throughout.
func selectTargetWords(vocab []models.ProfileVocab, questionCount int) []models.ProfileVocab {
	targetCount := 2 * questionCount
	if targetCount > len(vocab) {
		targetCount = len(vocab)
	}
	weakCount := int(math.Ceil(weakShare * float64(targetCount)))

	var weak, strong []models.ProfileVocab
	for _, entry := range vocab {
		if entry.Strength < weakStrengthThreshold {
			weak = append(weak, entry)
		} else {
			strong = append(strong, entry)
		}
	}

	if weakCount > len(weak) {
		weakCount = len(weak)
	}
	targets := append([]models.ProfileVocab{}, weak[:weakCount]...)
	for _, entry := range strong {
		if len(targets) >= targetCount {
			break
		}
		targets = append(targets, entry)
	}
	// not enough strong words either: keep draining the weak half
	for i := weakCount; i < len(weak) && len(targets) < targetCount; i++ {
		targets = append(targets, weak[i])
	}
	return targets
}

// normalizeQuestions repairs whatever the completion service returned
// into the documented question shape: sequential zero-based IDs, exactly
// four MCQ options always containing the correct answer, and non-nil
// speaking arrays.
func normalizeQuestions(questions []models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	for i, q := range questions {
		q.ID = i
		switch q.Type {
		case models.QuestionListeningMCQ:
			q.Options = normalizeOptions(q.Options, q.CorrectAnswer)
			if q.AudioText == "" {
				q.AudioText = q.Word
			}
		case models.QuestionSpeaking:
			if q.AcceptableVariations == nil {
				q.AcceptableVariations = []string{}
			}
			if q.HintWords == nil {
				q.HintWords = []models.VocabularyItem{}
			}
			if q.AudioText == "" {
				q.AudioText = q.ExpectedAnswer
			}
		}
		out[i] = q
	}
	return out
}

func normalizeOptions(options []string, correctAnswer string) []string {
	hasCorrect := false
	for _, option := range options {
		if strings.EqualFold(option, correctAnswer) {
			hasCorrect = true
			break
		}
	}
	if !hasCorrect && correctAnswer != "" {
		options = append([]string{correctAnswer}, options...)
	}
	if len(options) > mcqOptionCount {
		options = options[:mcqOptionCount]
	}
	for len(options) < mcqOptionCount {
		options = append(options, optionPlaceholder)
	}
	return options
}
