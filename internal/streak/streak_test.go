package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/pkg/models"
)

var testNow = time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)

// ledgerOf builds a ledger from day offsets relative to testNow
// (0 = today, -1 = yesterday) mapped to hit counts.
func ledgerOf(hits map[int]int) models.StreakLedger {
	ledger := models.StreakLedger{}
	for offset, n := range hits {
		day := testNow.AddDate(0, 0, offset)
		ledger[dayKey(day)] = &models.DayActivity{Hits: n, LastHit: day}
	}
	return ledger
}

func TestComputeEmptyLedger(t *testing.T) {
	info := Compute(models.StreakLedger{}, testNow)
	assert.Zero(t, info.Current)
	assert.Zero(t, info.Longest)
	assert.Zero(t, info.TotalActiveDays)
	assert.Zero(t, info.TodayHits)
}

func TestCurrentStreakSurvivesQuietToday(t *testing.T) {
	// D-2 and D-1 active, today untouched: streak must still be 2
	info := Compute(ledgerOf(map[int]int{-2: 1, -1: 1, 0: 0}), testNow)
	assert.Equal(t, 2, info.Current)
	assert.Zero(t, info.TodayHits)
}

func TestYesterdayGapBreaksStreak(t *testing.T) {
	// active today but not yesterday: the run is just today
	info := Compute(ledgerOf(map[int]int{-2: 1, -1: 0, 0: 1}), testNow)
	assert.Equal(t, 1, info.Current)
	assert.Equal(t, 1, info.TodayHits)
}

func TestCurrentStreakIncludesToday(t *testing.T) {
	info := Compute(ledgerOf(map[int]int{-2: 3, -1: 1, 0: 2}), testNow)
	assert.Equal(t, 3, info.Current)
}

func TestLongestStreakScansWholeLedger(t *testing.T) {
	// an old 4-day run beats the current 2-day run
	info := Compute(ledgerOf(map[int]int{-10: 1, -9: 1, -8: 2, -7: 1, -1: 1, 0: 1}), testNow)
	assert.Equal(t, 2, info.Current)
	assert.Equal(t, 4, info.Longest)
	assert.Equal(t, 6, info.TotalActiveDays)
}

func TestRecentDaysExactWindow(t *testing.T) {
	ledger := ledgerOf(map[int]int{-3: 2, 0: 1})
	days := RecentDays(ledger, 7, testNow)
	require.Len(t, days, 7)

	// oldest first, today last
	assert.Equal(t, dayKey(testNow.AddDate(0, 0, -6)), days[0].Date)
	assert.Equal(t, dayKey(testNow), days[6].Date)
	assert.True(t, days[6].Active)
	assert.Equal(t, 2, days[3].Hits)

	// sparse days render inactive
	assert.False(t, days[1].Active)
	assert.Zero(t, days[1].Hits)
}

func TestRecordHitPersists(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATA_DIR", t.TempDir())
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })

	store := NewStore(database.NewDocumentStore())

	day, err := store.RecordHit()
	require.NoError(t, err)
	assert.Equal(t, 1, day.Hits)

	day, err = store.RecordHit()
	require.NoError(t, err)
	assert.Equal(t, 2, day.Hits)

	info, err := store.Info()
	require.NoError(t, err)
	assert.Equal(t, 1, info.Current)
	assert.Equal(t, 2, info.TodayHits)
}
