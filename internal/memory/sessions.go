package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/pkg/models"
)

// ErrSessionNotFound is returned when no session exists for an ID
var ErrSessionNotFound = errors.New("session not found")

const previewLength = 120

// Store owns session memory and facts memory
type Store struct {
	docs *database.DocumentStore
}

// NewStore creates a memory store backed by docs
func NewStore(docs *database.DocumentStore) *Store {
	return &Store{docs: docs}
}

func sessionKey(id string) string {
	return database.SessionKeyPrefix + id
}

// NewSession creates a fresh session record. The ID may be empty, in
// which case one is generated.
func NewSession(id, language string) *models.Session {
	if id == "" {
		id = "chat_" + uuid.NewString()
	}
	now := time.Now().UTC()
	return &models.Session{
		ID:             id,
		Language:       language,
		CreatedAt:      now,
		UpdatedAt:      now,
		FluencyScores:  []int{},
		TopicsCovered:  []string{},
		VocabularyUsed: []models.SessionVocab{},
		Messages:       []models.ChatMessage{},
	}
}

// LoadSession returns the stored session, or ErrSessionNotFound
func (s *Store) LoadSession(id string) (*models.Session, error) {
	exists, err := s.docs.Exists(sessionKey(id))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrSessionNotFound
	}

	var session models.Session
	if err := s.docs.Read(sessionKey(id), &models.Session{}, &session); err != nil {
		return nil, err
	}
	if session.ID == "" {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// SaveSession persists the session. AvgFluency is recomputed from
// FluencyScores here so it can never drift from its source.
func (s *Store) SaveSession(session *models.Session) error {
	session.UpdatedAt = time.Now().UTC()
	if len(session.FluencyScores) > 0 {
		sum := 0
		for _, score := range session.FluencyScores {
			sum += score
		}
		session.AvgFluency = int(math.Round(float64(sum) / float64(len(session.FluencyScores))))
	}
	if err := s.docs.Write(sessionKey(session.ID), session); err != nil {
		return fmt.Errorf("failed to save session %s: %v", session.ID, err)
	}
	log.Printf("[memory] saved session %s (%d msgs, avg fluency %d)",
		session.ID, len(session.Messages), session.AvgFluency)
	return nil
}

// ListSessions returns lightweight summaries of every session, most
// recently updated first.
func (s *Store) ListSessions() ([]models.SessionSummary, error) {
	docs, err := s.docs.ReadAll(database.SessionKeyPrefix)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.SessionSummary, 0, len(docs))
	for key, raw := range docs {
		var session models.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			log.Printf("[memory] skipping unreadable session %s: %v", key, err)
			continue
		}
		summary := models.SessionSummary{
			ID:            session.ID,
			Language:      session.Language,
			CreatedAt:     session.CreatedAt,
			UpdatedAt:     session.UpdatedAt,
			MessageCount:  len(session.Messages),
			AvgFluency:    session.AvgFluency,
			TopicsCovered: session.TopicsCovered,
		}
		if n := len(session.Messages); n > 0 {
			preview := session.Messages[n-1].Content
			if len(preview) > previewLength {
				preview = preview[:previewLength]
			}
			summary.LastMessagePreview = preview
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// DeleteSession removes one session
func (s *Store) DeleteSession(id string) error {
	exists, err := s.docs.Exists(sessionKey(id))
	if err != nil {
		return err
	}
	if !exists {
		return ErrSessionNotFound
	}
	return s.docs.Delete(sessionKey(id))
}

// DeleteAllSessions removes every session and returns the number deleted
func (s *Store) DeleteAllSessions() (int, error) {
	return s.docs.DeleteByPrefix(database.SessionKeyPrefix)
}
