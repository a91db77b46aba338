package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/pkg/models"
)

// ErrQuizNotFound is returned when no quiz exists for an ID
var ErrQuizNotFound = errors.New("quiz not found")

// Store persists quiz documents
type Store struct {
	docs *database.DocumentStore
}

// NewStore creates a quiz store backed by docs
func NewStore(docs *database.DocumentStore) *Store {
	return &Store{docs: docs}
}

func quizKey(id string) string {
	return database.QuizKeyPrefix + id
}

// Save writes the quiz document
func (s *Store) Save(quiz *models.Quiz) error {
	if err := s.docs.Write(quizKey(quiz.QuizID), quiz); err != nil {
		return fmt.Errorf("failed to save quiz %s: %v", quiz.QuizID, err)
	}
	return nil
}

// Load returns the stored quiz, or ErrQuizNotFound
func (s *Store) Load(id string) (*models.Quiz, error) {
	if id == "" {
		return nil, ErrQuizNotFound
	}
	exists, err := s.docs.Exists(quizKey(id))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrQuizNotFound
	}
	var quiz models.Quiz
	if err := s.docs.Read(quizKey(id), &models.Quiz{QuizID: id}, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// List returns summaries of every quiz, newest first
func (s *Store) List() ([]models.QuizSummary, error) {
	docs, err := s.docs.ReadAll(database.QuizKeyPrefix)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.QuizSummary, 0, len(docs))
	for key, raw := range docs {
		var quiz models.Quiz
		if err := json.Unmarshal(raw, &quiz); err != nil {
			log.Printf("[quiz] skipping unreadable quiz %s: %v", key, err)
			continue
		}
		summary := models.QuizSummary{
			QuizID:       quiz.QuizID,
			Language:     quiz.Language,
			Level:        quiz.Level,
			Difficulty:   quiz.Difficulty,
			NumQuestions: quiz.NumQuestions,
			Status:       quiz.Status,
			CreatedAt:    quiz.CreatedAt,
			CompletedAt:  quiz.CompletedAt,
		}
		if quiz.Results != nil {
			summary.TotalScore = &quiz.Results.TotalScore
			summary.XPEarned = &quiz.Results.XPEarned
			summary.CorrectCount = &quiz.Results.CorrectCount
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}
