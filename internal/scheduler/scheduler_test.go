package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/internal/streak"
	"github.com/example/lingobot/pkg/models"
)

type fakeNotifier struct {
	calls  int
	streak int
}

func (f *fakeNotifier) SendStreakReminder(current int) error {
	f.calls++
	f.streak = current
	return nil
}

func setupTestScheduler(t *testing.T) (*Scheduler, *streak.Store, *fakeNotifier) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("REMINDER_HOUR", "0") // any hour qualifies in tests
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })

	streaks := streak.NewStore(database.NewDocumentStore())
	notifier := &fakeNotifier{}
	return New(streaks, notifier), streaks, notifier
}

func seedYesterdayHit(t *testing.T) {
	t.Helper()
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	ledger := models.StreakLedger{yesterday: &models.DayActivity{Hits: 1}}
	require.NoError(t, database.NewDocumentStore().Write(database.KeyStreak, ledger))
}

func TestReminderFiresWhenStreakAtRisk(t *testing.T) {
	scheduler, _, notifier := setupTestScheduler(t)
	seedYesterdayHit(t)

	scheduler.checkStreakReminder()
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, 1, notifier.streak)
}

func TestReminderOncePerDay(t *testing.T) {
	scheduler, _, notifier := setupTestScheduler(t)
	seedYesterdayHit(t)

	scheduler.checkStreakReminder()
	scheduler.checkStreakReminder()
	assert.Equal(t, 1, notifier.calls)
}

func TestNoReminderAfterPractice(t *testing.T) {
	scheduler, streaks, notifier := setupTestScheduler(t)
	seedYesterdayHit(t)
	_, err := streaks.RecordHit()
	require.NoError(t, err)

	scheduler.checkStreakReminder()
	assert.Zero(t, notifier.calls)
}

func TestNoReminderWithoutStreak(t *testing.T) {
	scheduler, _, notifier := setupTestScheduler(t)

	scheduler.checkStreakReminder()
	assert.Zero(t, notifier.calls)
}

func TestNoReminderBeforeConfiguredHour(t *testing.T) {
	scheduler, _, notifier := setupTestScheduler(t)
	seedYesterdayHit(t)
	t.Setenv("REMINDER_HOUR", "23")

	if time.Now().UTC().Hour() < 23 {
		scheduler.checkStreakReminder()
		assert.Zero(t, notifier.calls)
	}
}
