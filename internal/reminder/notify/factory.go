package notify

import (
	"io"
	"log/slog"
	"strings"

	"github.com/central-university-dev/go-vacation-bot/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the reminder notifier: chat delivery, backed by Kafka when fallback is enabled
// and brokers are configured. The returned closer releases the Kafka producer.
func New(cfg *config.Config, sender MessageSender, logger *slog.Logger) (Notifier, io.Closer) {
	telegram := NewTelegramNotifier(sender, logger)

	brokers := splitBrokers(cfg.KafkaBrokers)
	if !cfg.FallbackEnabled || len(brokers) == 0 {
		return telegram, nopCloser{}
	}

	logger.Info("Включена резервная доставка напоминаний через Kafka",
		"brokers", brokers,
		"topic", cfg.TopicReminders,
	)

	kafkaNotifier := NewKafkaNotifier(brokers, cfg.TopicReminders, logger)

	return NewFallbackNotifier(telegram, kafkaNotifier, logger), kafkaNotifier
}

func splitBrokers(raw string) []string {
	var brokers []string

	for _, broker := range strings.Split(raw, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}

	return brokers
}
