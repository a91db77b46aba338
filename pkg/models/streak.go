package models

import "time"

// DayActivity counts qualifying interactions on one calendar day
type DayActivity struct {
	Hits    int       `json:"hits"`
	LastHit time.Time `json:"last_hit"`
}

// StreakLedger maps "YYYY-MM-DD" day keys to activity. Append-only:
// entries are created or incremented, never removed.
type StreakLedger map[string]*DayActivity

// StreakInfo is derived from the ledger on demand
type StreakInfo struct {
	Current         int `json:"current"`
	Longest         int `json:"longest"`
	TotalActiveDays int `json:"total_active_days"`
	TodayHits       int `json:"today_hits"`
}

// StreakDay is one cell of the calendar view
type StreakDay struct {
	Date   string `json:"date"`
	Hits   int    `json:"hits"`
	Active bool   `json:"active"`
}
