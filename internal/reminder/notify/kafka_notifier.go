package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/central-university-dev/go-vacation-bot/internal/common/metrics"
	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes reminders as JSON events keyed by chat id.
type KafkaNotifier struct {
	producer MessageWriter
	logger   *slog.Logger
	topic    string
}

type ReminderMessage struct {
	ChatID       string `json:"chatId"`
	VacationKey  string `json:"vacationKey"`
	FullName     string `json:"fio"`
	Organization string `json:"org"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	DurationDays int    `json:"days"`
	DaysLeft     int    `json:"daysLeft"`
	Date         string `json:"date"`
	Text         string `json:"text"`
}

func NewKafkaNotifier(brokers []string, topic string, logger *slog.Logger) *KafkaNotifier {
	producer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return NewKafkaNotifierWithWriter(producer, topic, logger)
}

func NewKafkaNotifierWithWriter(producer MessageWriter, topic string, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		logger:   logger,
		topic:    topic,
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, reminder models.Reminder) error {
	record := reminder.Record

	message := ReminderMessage{
		ChatID:       reminder.ChatID,
		VacationKey:  record.Key(),
		FullName:     record.FullName,
		Organization: record.Organization,
		StartDate:    record.StartDate.String(),
		EndDate:      record.EndDate.String(),
		DurationDays: record.DurationDays,
		DaysLeft:     reminder.DaysLeft,
		Date:         reminder.Date.String(),
		Text:         FormatReminder(reminder),
	}

	value, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации сообщения: %w", err)
	}

	err = n.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(reminder.ChatID),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		metrics.RecordReminder("kafka", "error")

		n.logger.Error("Ошибка при отправке сообщения в Kafka",
			"error", err,
			"topic", n.topic,
		)

		return fmt.Errorf("ошибка при отправке сообщения в Kafka: %w", err)
	}

	metrics.RecordReminder("kafka", "success")

	n.logger.Info("Напоминание отправлено в Kafka",
		"chat_id", reminder.ChatID,
		"topic", n.topic,
	)

	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}
