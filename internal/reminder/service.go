package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/central-university-dev/go-vacation-bot/internal/common/metrics"
	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

type Store interface {
	Update(ctx context.Context, fn func(doc *models.Document) (bool, error)) error
}

type Notifier interface {
	Notify(ctx context.Context, reminder models.Reminder) error
}

type Service struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
}

func NewService(store Store, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// RunOnce performs one scan-and-send pass for today. The document is saved once,
// and only when at least one reminder was delivered. Failed deliveries stay unmarked.
func (s *Service) RunOnce(ctx context.Context, today models.Date) (int, error) {
	started := time.Now()
	sent := 0

	err := s.store.Update(ctx, func(doc *models.Document) (bool, error) {
		for _, chatID := range doc.ConfiguredChats() {
			leadDays := doc.Settings[chatID].NotifyDays

			for _, due := range Due(doc.Vacations[chatID], doc.Notifications[chatID], leadDays, today) {
				reminder := models.Reminder{
					ChatID:   chatID,
					Record:   due.Record,
					DaysLeft: due.DaysLeft,
					Date:     today,
				}

				if err := s.notifier.Notify(ctx, reminder); err != nil {
					s.logger.Error("Ошибка отправки напоминания",
						"chat_id", chatID,
						"vacation_id", due.Index,
						"error", err,
					)

					continue
				}

				doc.Notifications[chatID] = append(doc.Notifications[chatID], models.NotificationLogEntry{
					VacationID:  due.Index,
					VacationKey: due.Record.Key(),
					SentAt:      today,
				})

				sent++
			}
		}

		return sent > 0, nil
	})
	if err != nil {
		metrics.RecordScan("error", time.Since(started))
		return sent, fmt.Errorf("ошибка при сохранении журнала уведомлений: %w", err)
	}

	metrics.RecordScan("success", time.Since(started))

	if sent > 0 {
		s.logger.Info("Напоминания отправлены", "count", sent, "date", today.String())
	} else {
		s.logger.Info("Напоминаний на сегодня нет", "date", today.String())
	}

	return sent, nil
}
