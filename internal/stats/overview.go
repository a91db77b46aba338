package stats

import (
	"log"
	"math"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/internal/memory"
	"github.com/example/lingobot/internal/progression"
	"github.com/example/lingobot/internal/quiz"
	"github.com/example/lingobot/internal/streak"
	"github.com/example/lingobot/pkg/models"
)

// masteredThreshold marks a word as mastered on the dashboard
const masteredThreshold = 0.7

const recentActivityCount = 5

// XPBlock summarizes progression for the dashboard
type XPBlock struct {
	XP          int    `json:"xp"`
	Level       int    `json:"level"`
	Difficulty  string `json:"difficulty"`
	NextLevelXP int    `json:"next_level_xp"`
	XPToNext    int    `json:"xp_to_next"`
	ProgressPct int    `json:"progress_pct"`
}

// WordCounts summarizes the exposure log and mastery map
type WordCounts struct {
	Total    int `json:"total"`
	Mastered int `json:"mastered"`
	UserUsed int `json:"user_used"`
}

// LanguageBlock is the per-language slice of the knowledge doc
type LanguageBlock struct {
	Language      string   `json:"language"`
	TotalSessions int      `json:"total_sessions"`
	TotalMessages int      `json:"total_messages"`
	AvgFluency    int      `json:"avg_fluency"`
	VocabCount    int      `json:"vocab_count"`
	StrongTopics  []string `json:"strong_topics"`
	WeakTopics    []string `json:"weak_topics"`
}

// QuizBlock summarizes quiz history
type QuizBlock struct {
	Total     int                 `json:"total"`
	Completed int                 `json:"completed"`
	AvgScore  int                 `json:"avg_score"`
	Last      *models.QuizSummary `json:"last,omitempty"`
}

// Overview is the full dashboard payload
type Overview struct {
	XP             XPBlock                 `json:"xp"`
	Words          WordCounts              `json:"words"`
	Languages      []LanguageBlock         `json:"languages"`
	Quizzes        QuizBlock               `json:"quizzes"`
	RecentSessions []models.SessionSummary `json:"recent_sessions"`
	Streak         models.StreakInfo       `json:"streak"`
}

// Service assembles the dashboard and performs the full reset
type Service struct {
	docs     *database.DocumentStore
	memory   *memory.Store
	quizzes  *quiz.Store
	streaks  *streak.Store
	progress *progression.Store
}

// NewService wires a stats service over the shared stores
func NewService(docs *database.DocumentStore, mem *memory.Store, quizzes *quiz.Store, streaks *streak.Store, progress *progression.Store) *Service {
	return &Service{docs: docs, memory: mem, quizzes: quizzes, streaks: streaks, progress: progress}
}

// Overview assembles the dashboard from every store
func (s *Service) Overview() (*Overview, error) {
	mem, err := s.progress.Get()
	if err != nil {
		return nil, err
	}

	out := &Overview{}
	out.XP = buildXPBlock(mem)

	var words models.Words
	if err := s.docs.Read(database.KeyWords, models.DefaultWords(), &words); err != nil {
		return nil, err
	}
	out.Words.Total = len(words.All)
	out.Words.UserUsed = len(words.UserUsed)

	knowledge, err := s.memory.LoadKnowledge()
	if err != nil {
		return nil, err
	}
	for language, profile := range knowledge.Languages {
		block := LanguageBlock{
			Language:      language,
			TotalSessions: profile.TotalSessions,
			TotalMessages: profile.TotalMessages,
			AvgFluency:    profile.AvgFluency,
			VocabCount:    len(profile.VocabularyMastery),
			StrongTopics:  profile.StrongTopics,
			WeakTopics:    profile.WeakTopics,
		}
		for _, entry := range profile.VocabularyMastery {
			if entry.Mastery >= masteredThreshold {
				out.Words.Mastered++
			}
		}
		out.Languages = append(out.Languages, block)
	}

	summaries, err := s.quizzes.List()
	if err != nil {
		return nil, err
	}
	out.Quizzes.Total = len(summaries)
	scoreSum, scored := 0, 0
	for i, summary := range summaries {
		if summary.Status != models.QuizStatusCompleted {
			continue
		}
		out.Quizzes.Completed++
		if summary.TotalScore != nil {
			scoreSum += *summary.TotalScore
			scored++
		}
		if out.Quizzes.Last == nil {
			out.Quizzes.Last = &summaries[i]
		}
	}
	if scored > 0 {
		out.Quizzes.AvgScore = int(math.Round(float64(scoreSum) / float64(scored)))
	}

	sessions, err := s.memory.ListSessions()
	if err != nil {
		return nil, err
	}
	if len(sessions) > recentActivityCount {
		sessions = sessions[:recentActivityCount]
	}
	out.RecentSessions = sessions

	out.Streak, err = s.streaks.Info()
	if err != nil {
		return nil, err
	}
	return out, nil
}

func buildXPBlock(mem *models.Memory) XPBlock {
	level := progression.Level(mem.XP)
	block := XPBlock{
		XP:         mem.XP,
		Level:      level,
		Difficulty: progression.Difficulty(level),
	}
	block.NextLevelXP = progression.NextLevelXP(level)
	if block.NextLevelXP > 0 {
		floor := progression.LevelThresholds[level-1]
		span := block.NextLevelXP - floor
		block.XPToNext = block.NextLevelXP - mem.XP
		block.ProgressPct = int(math.Round(float64(mem.XP-floor) / float64(span) * 100))
	} else {
		block.ProgressPct = 100
	}
	return block
}

// Reset restores every document to its default shape and removes all
// session and quiz history. There is no undo.
func (s *Service) Reset() error {
	if err := s.docs.Write(database.KeyMemory, models.DefaultMemory()); err != nil {
		return err
	}
	if err := s.docs.Write(database.KeyWords, models.DefaultWords()); err != nil {
		return err
	}
	if err := s.docs.Write(database.KeyConversations, []models.ConversationEntry{}); err != nil {
		return err
	}
	if err := s.memory.ResetKnowledge(); err != nil {
		return err
	}
	if err := s.streaks.Reset(); err != nil {
		return err
	}
	sessions, err := s.docs.DeleteByPrefix(database.SessionKeyPrefix)
	if err != nil {
		return err
	}
	quizzes, err := s.docs.DeleteByPrefix(database.QuizKeyPrefix)
	if err != nil {
		return err
	}
	log.Printf("[stats] full reset done: %d sessions and %d quizzes removed", sessions, quizzes)
	return nil
}
