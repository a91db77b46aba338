package streak

import (
	"sort"
	"time"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/pkg/models"
)

const dayFormat = "2006-01-02"

// dayKey formats a timestamp as its UTC calendar-day key
func dayKey(t time.Time) string {
	return t.UTC().Format(dayFormat)
}

// Store persists the daily activity ledger
type Store struct {
	docs *database.DocumentStore
}

// NewStore creates a streak store backed by docs
func NewStore(docs *database.DocumentStore) *Store {
	return &Store{docs: docs}
}

// Load returns the current ledger
func (s *Store) Load() (models.StreakLedger, error) {
	ledger := models.StreakLedger{}
	if err := s.docs.Read(database.KeyStreak, models.StreakLedger{}, &ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

// RecordHit counts one qualifying interaction for today, creating the
// day entry if absent, and returns the updated entry.
func (s *Store) RecordHit() (*models.DayActivity, error) {
	now := time.Now().UTC()
	key := dayKey(now)

	ledger := models.StreakLedger{}
	var today *models.DayActivity
	err := s.docs.Update(database.KeyStreak, models.StreakLedger{}, &ledger, func() error {
		day, ok := ledger[key]
		if !ok {
			day = &models.DayActivity{}
			ledger[key] = day
		}
		day.Hits++
		day.LastHit = now
		today = day
		return nil
	})
	if err != nil {
		return nil, err
	}
	return today, nil
}

// Info computes streak figures from the persisted ledger
func (s *Store) Info() (models.StreakInfo, error) {
	ledger, err := s.Load()
	if err != nil {
		return models.StreakInfo{}, err
	}
	return Compute(ledger, time.Now()), nil
}

// Compute derives current/longest streaks from the ledger. The current
// streak walks backward from today through consecutive active days; when
// today has no hits yet the walk starts from yesterday instead, so a
// streak is not broken merely because the user has not acted today.
func Compute(ledger models.StreakLedger, now time.Time) models.StreakInfo {
	info := models.StreakInfo{}
	if today, ok := ledger[dayKey(now)]; ok {
		info.TodayHits = today.Hits
	}
	if len(ledger) == 0 {
		return info
	}

	active := make(map[string]bool, len(ledger))
	var keys []string
	for k, day := range ledger {
		keys = append(keys, k)
		if day.Hits > 0 {
			active[k] = true
		}
	}
	sort.Strings(keys)
	info.TotalActiveDays = len(active)

	walkBack := func(from time.Time) int {
		n := 0
		for cursor := from; active[dayKey(cursor)]; cursor = cursor.AddDate(0, 0, -1) {
			n++
		}
		return n
	}
	info.Current = walkBack(now)
	if info.Current == 0 {
		info.Current = walkBack(now.AddDate(0, 0, -1))
	}

	// longest run of calendar-consecutive active days, oldest first
	run := 0
	var prev time.Time
	for _, k := range keys {
		if !active[k] {
			run = 0
			prev = time.Time{}
			continue
		}
		day, err := time.Parse(dayFormat, k)
		if err != nil {
			continue
		}
		if !prev.IsZero() && prev.AddDate(0, 0, 1).Equal(day) {
			run++
		} else {
			run = 1
		}
		if run > info.Longest {
			info.Longest = run
		}
		prev = day
	}

	return info
}

// RecentDays returns the last n calendar days oldest-first, exactly n
// entries regardless of ledger sparsity; missing days render inactive.
func RecentDays(ledger models.StreakLedger, n int, now time.Time) []models.StreakDay {
	days := make([]models.StreakDay, 0, n)
	for i := n - 1; i >= 0; i-- {
		key := dayKey(now.AddDate(0, 0, -i))
		hits := 0
		if day, ok := ledger[key]; ok {
			hits = day.Hits
		}
		days = append(days, models.StreakDay{Date: key, Hits: hits, Active: hits > 0})
	}
	return days
}

// Reset clears the ledger
func (s *Store) Reset() error {
	return s.docs.Write(database.KeyStreak, models.StreakLedger{})
}
