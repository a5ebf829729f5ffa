package repository

import (
	"context"
	"io"
	"log/slog"

	"github.com/central-university-dev/go-vacation-bot/internal/config"
	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

type ChatStateRepository interface {
	GetState(ctx context.Context, chatID string) (models.ChatState, error)
	SetState(ctx context.Context, chatID string, state models.ChatState) error
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewChatStateRepository uses Redis when REDIS_URL is set and memory otherwise.
func NewChatStateRepository(cfg *config.Config, logger *slog.Logger) (ChatStateRepository, io.Closer, error) {
	if cfg.RedisURL == "" {
		logger.Info("Состояния чатов хранятся в памяти")
		return NewMemoryChatStateRepository(), nopCloser{}, nil
	}

	repo, err := NewRedisChatStateRepository(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, cfg.ChatStateTTL, logger)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Состояния чатов хранятся в Redis", "ttl", cfg.ChatStateTTL)

	return repo, repo, nil
}
