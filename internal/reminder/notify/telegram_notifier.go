// Package notify delivers reminders to chats and external sinks.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/central-university-dev/go-vacation-bot/internal/common/metrics"
	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

type MessageSender interface {
	SendMessage(ctx context.Context, chatID string, text string, keyboard models.Keyboard) error
}

type TelegramNotifier struct {
	sender MessageSender
	logger *slog.Logger
}

func NewTelegramNotifier(sender MessageSender, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender: sender,
		logger: logger,
	}
}

func (n *TelegramNotifier) Notify(ctx context.Context, reminder models.Reminder) error {
	if err := n.sender.SendMessage(ctx, reminder.ChatID, FormatReminder(reminder), nil); err != nil {
		metrics.RecordReminder("telegram", "error")
		return fmt.Errorf("ошибка отправки напоминания в чат %s: %w", reminder.ChatID, err)
	}

	metrics.RecordReminder("telegram", "success")

	n.logger.Debug("Напоминание отправлено в чат",
		"chat_id", reminder.ChatID,
		"fio", reminder.Record.FullName,
		"days_left", reminder.DaysLeft,
	)

	return nil
}

func FormatReminder(reminder models.Reminder) string {
	record := reminder.Record

	return fmt.Sprintf("⏰ Напоминание об отпуске\n\n"+
		"👤 %s\n"+
		"🏢 %s\n"+
		"📅 Начало: %s\n"+
		"📅 Конец: %s\n"+
		"🗓 Дней: %d\n\n"+
		"До начала отпуска: %d дн.",
		record.FullName,
		record.Organization,
		record.StartDate.String(),
		record.EndDate.String(),
		record.DurationDays,
		reminder.DaysLeft,
	)
}
