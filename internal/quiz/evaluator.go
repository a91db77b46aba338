package quiz

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/example/lingobot/internal/progression"
	"github.com/example/lingobot/pkg/models"
)

// xpPerQuestion scales quiz XP: a perfect quiz earns 5 XP per question
const xpPerQuestion = 5

const fallbackSpeakingFeedback = "Could not evaluate this answer. Please try again later."

// AlreadyCompletedError rejects re-grading while still carrying the
// original results, so callers can display the prior outcome.
type AlreadyCompletedError struct {
	Results *models.QuizResults
}

func (e *AlreadyCompletedError) Error() string {
	return "quiz already completed"
}

// Evaluator grades submitted quizzes and applies the earned XP
type Evaluator struct {
	store    *Store
	progress *progression.Store
	ai       Completer
}

// NewEvaluator wires a quiz evaluator
func NewEvaluator(store *Store, progress *progression.Store, completer Completer) *Evaluator {
	return &Evaluator{store: store, progress: progress, ai: completer}
}

// speakingEvaluation is one graded speaking answer from the completion
// service's batch response
type speakingEvaluation struct {
	QuestionID       int    `json:"questionId"`
	Score            int    `json:"score"`
	Correct          bool   `json:"correct"`
	Feedback         string `json:"feedback"`
	CorrectedAnswer  string `json:"corrected_answer"`
	PronunciationTip string `json:"pronunciation_tip"`
}

type speakingBatch struct {
	Evaluations []speakingEvaluation `json:"evaluations"`
}

// Evaluate grades every question, applies the earned XP and completes the
// quiz document in one save. A completed quiz is never re-graded.
func (e *Evaluator) Evaluate(ctx context.Context, quizID string, answers []models.Answer) (*models.Quiz, error) {
	quiz, err := e.store.Load(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.Status == models.QuizStatusCompleted {
		return nil, &AlreadyCompletedError{Results: quiz.Results}
	}

	answerByID := make(map[int]string, len(answers))
	for _, answer := range answers {
		answerByID[answer.QuestionID] = answer.Answer
	}

	var results []models.QuestionResult
	var speaking []models.Question
	for _, question := range quiz.Questions {
		switch question.Type {
		case models.QuestionSpeaking:
			speaking = append(speaking, question)
		default:
			results = append(results, gradeMCQ(question, answerByID[question.ID]))
		}
	}
	results = append(results, e.gradeSpeakingBatch(ctx, quiz.Language, speaking, answerByID)...)

	sort.Slice(results, func(i, j int) bool {
		return results[i].QuestionID < results[j].QuestionID
	})

	totalQuestions := len(results)
	sum, correctCount := 0, 0
	for _, result := range results {
		sum += result.Score
		if result.Correct {
			correctCount++
		}
	}
	totalScore := 0
	if totalQuestions > 0 {
		totalScore = int(math.Round(float64(sum) / float64(totalQuestions)))
	}
	xp := int(math.Round(float64(totalScore) / 100 * float64(totalQuestions) * xpPerQuestion))

	_, leveledUp, err := e.progress.AddXP(xp)
	if err != nil {
		return nil, fmt.Errorf("failed to apply quiz XP: %v", err)
	}

	now := time.Now().UTC()
	quiz.Status = models.QuizStatusCompleted
	quiz.Answers = answers
	quiz.CompletedAt = &now
	quiz.Results = &models.QuizResults{
		QuestionResults: results,
		TotalScore:      totalScore,
		CorrectCount:    correctCount,
		TotalQuestions:  totalQuestions,
		XPEarned:        xp,
		LeveledUp:       leveledUp,
		GradedAt:        now,
	}
	if err := e.store.Save(quiz); err != nil {
		return nil, err
	}
	log.Printf("[quiz] graded %s: %d/%d correct, score %d, +%d XP",
		quiz.QuizID, correctCount, totalQuestions, totalScore, xp)
	return quiz, nil
}

// gradeMCQ is deterministic: case-insensitive exact match, all or nothing
func gradeMCQ(question models.Question, userAnswer string) models.QuestionResult {
	result := models.QuestionResult{
		QuestionID:    question.ID,
		Type:          question.Type,
		Word:          question.Word,
		WordRomanized: question.WordRomanized,
		UserAnswer:    userAnswer,
		CorrectAnswer: question.CorrectAnswer,
		Options:       question.Options,
	}
	if strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(question.CorrectAnswer)) {
		result.Correct = true
		result.Score = 100
		result.Feedback = "Correct!"
	} else {
		result.Feedback = fmt.Sprintf("The correct answer was %q.", question.CorrectAnswer)
	}
	return result
}

// gradeSpeakingBatch sends every speaking answer in one completion call.
// If that call fails, the whole batch degrades to zero-score results so
// the quiz still completes.
func (e *Evaluator) gradeSpeakingBatch(ctx context.Context, language string, questions []models.Question, answers map[int]string) []models.QuestionResult {
	if len(questions) == 0 {
		return nil
	}

	graded := map[int]speakingEvaluation{}
	system, user := buildSpeakingGradingPrompt(language, questions, answers)
	var batch speakingBatch
	if err := e.ai.CompleteJSON(ctx, system, user, &batch); err != nil {
		log.Printf("[quiz] speaking batch grading failed, falling back to zero scores: %v", err)
	} else {
		for _, eval := range batch.Evaluations {
			graded[eval.QuestionID] = eval
		}
	}

	results := make([]models.QuestionResult, 0, len(questions))
	for _, question := range questions {
		result := models.QuestionResult{
			QuestionID:     question.ID,
			Type:           question.Type,
			SentenceEN:     question.SentenceEN,
			UserAnswer:     answers[question.ID],
			ExpectedAnswer: question.ExpectedAnswer,
		}
		if eval, ok := graded[question.ID]; ok {
			result.Score = clampScore(eval.Score)
			result.Correct = eval.Correct
			result.Feedback = eval.Feedback
			result.CorrectedAnswer = eval.CorrectedAnswer
			result.PronunciationTip = eval.PronunciationTip
		} else {
			result.Feedback = fallbackSpeakingFeedback
		}
		results = append(results, result)
	}
	return results
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
