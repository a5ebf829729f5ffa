package notify

import (
	"context"
	"log/slog"

	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

type Notifier interface {
	Notify(ctx context.Context, reminder models.Reminder) error
}

// FallbackNotifier mirrors a reminder to the secondary when the primary fails.
// The primary error is always returned, so the reminder stays unsent and the
// next pass retries the chat delivery.
type FallbackNotifier struct {
	primary   Notifier
	secondary Notifier
	logger    *slog.Logger
}

func NewFallbackNotifier(primary, secondary Notifier, logger *slog.Logger) *FallbackNotifier {
	return &FallbackNotifier{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (n *FallbackNotifier) Notify(ctx context.Context, reminder models.Reminder) error {
	err := n.primary.Notify(ctx, reminder)
	if err == nil {
		return nil
	}

	n.logger.Warn("Основной транспорт недоступен, дублируем напоминание в резервный",
		"primaryError", err,
		"chat_id", reminder.ChatID,
	)

	if fallbackErr := n.secondary.Notify(ctx, reminder); fallbackErr != nil {
		n.logger.Error("Резервный транспорт недоступен",
			"error", fallbackErr,
			"chat_id", reminder.ChatID,
		)

		return err
	}

	n.logger.Info("Напоминание продублировано в резервный транспорт, отправка в чат будет повторена",
		"chat_id", reminder.ChatID,
	)

	return err
}
