package scheduler

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/lingobot/internal/streak"
)

// DefaultReminderHour is the earliest hour (UTC) a reminder may go out
const DefaultReminderHour = 18

// Notifier interface for sending notifications
type Notifier interface {
	SendStreakReminder(current int) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	streaks   *streak.Store
	notifier  Notifier

	lastReminded string // day key of the last sent reminder
}

// New creates a new scheduler instance
func New(streaks *streak.Store, notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		streaks:   streaks,
		notifier:  notifier,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	// Hourly check: remind once per day when the streak is at risk
	s.scheduler.Every(1).Hour().Do(s.checkStreakReminder)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkStreakReminder nudges the learner when the day is ending without
// any practice and there is a streak to lose
func (s *Scheduler) checkStreakReminder() {
	now := time.Now().UTC()
	if now.Hour() < reminderHour() {
		return
	}

	today := now.Format("2006-01-02")
	if s.lastReminded == today {
		return
	}

	info, err := s.streaks.Info()
	if err != nil {
		log.Printf("[scheduler] failed to load streak: %v", err)
		return
	}
	if info.TodayHits > 0 || info.Current == 0 {
		return
	}

	if err := s.notifier.SendStreakReminder(info.Current); err != nil {
		log.Printf("[scheduler] failed to send streak reminder: %v", err)
		return
	}
	s.lastReminded = today
	log.Printf("[scheduler] streak reminder sent (current streak %d)", info.Current)
}

func reminderHour() int {
	if raw := os.Getenv("REMINDER_HOUR"); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return DefaultReminderHour
}
