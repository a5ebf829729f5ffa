package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

const DefaultNotifyTime = "09:00"

type Runner interface {
	RunOnce(ctx context.Context, today models.Date) (int, error)
}

// Scheduler runs the scan-and-send pass once a day at a fixed local time.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	logger    *slog.Logger
	at        string
	location  *time.Location
	now       func() time.Time
}

func NewScheduler(runner Runner, at string, location *time.Location, logger *slog.Logger) *Scheduler {
	if at == "" {
		at = DefaultNotifyTime
	}

	if location == nil {
		location = time.UTC
	}

	scheduler := gocron.NewScheduler(location)
	scheduler.SingletonModeAll()
	scheduler.WaitForScheduleAll()

	return &Scheduler{
		scheduler: scheduler,
		runner:    runner,
		logger:    logger,
		at:        at,
		location:  location,
		now:       time.Now,
	}
}

func (s *Scheduler) Start() error {
	next, err := NextRun(s.now().In(s.location), s.at)
	if err != nil {
		return err
	}

	if _, err := s.scheduler.Every(1).Day().At(s.at).Do(s.Trigger); err != nil {
		s.logger.Error("Ошибка при настройке планировщика", "error", err)
		return fmt.Errorf("ошибка при настройке планировщика: %w", err)
	}

	s.logger.Info("Запуск планировщика напоминаний",
		"at", s.at,
		"timezone", s.location.String(),
		"next_run", next.Format(time.RFC3339),
	)

	s.scheduler.StartAsync()

	return nil
}

// Trigger runs one pass for the current local day. It never panics.
func (s *Scheduler) Trigger() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Паника в задаче напоминаний", "panic", r)
		}
	}()

	today := models.DateOf(s.now().In(s.location))

	s.logger.Info("Запуск проверки напоминаний", "date", today.String())

	if _, err := s.runner.RunOnce(context.Background(), today); err != nil {
		s.logger.Error("Ошибка при проверке напоминаний", "error", err)
	}

	if next, err := NextRun(s.now().In(s.location), s.at); err == nil {
		s.logger.Info("Следующая проверка напоминаний", "next_run", next.Format(time.RFC3339))
	}
}

func (s *Scheduler) Stop() {
	s.logger.Info("Остановка планировщика напоминаний")
	s.scheduler.Stop()
}

// NextRun returns the first occurrence of at ("HH:MM") strictly after now, in now's location.
func NextRun(now time.Time, at string) (time.Time, error) {
	hour, minute, err := parseClock(at)
	if err != nil {
		return time.Time{}, err
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}

	return next, nil
}

func parseClock(at string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(at), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("некорректное время запуска: %q", at)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("некорректное время запуска: %q", at)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("некорректное время запуска: %q", at)
	}

	return hour, minute, nil
}
