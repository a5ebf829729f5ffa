package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/central-university-dev/go-vacation-bot/internal/domain/models"
)

const chatStateKeyPrefix = "vacation_bot:chat_state:"

// RedisChatStateRepository keeps dialog states across restarts. Idle chats have no key.
type RedisChatStateRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisChatStateRepository(redisURL, password string, db int, ttl time.Duration, logger *slog.Logger) (*RedisChatStateRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis успешно установлено")

	return &RedisChatStateRepository{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

func (r *RedisChatStateRepository) GetState(ctx context.Context, chatID string) (models.ChatState, error) {
	value, err := r.client.Get(ctx, chatStateKeyPrefix+chatID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.StateIdle, nil
		}

		r.logger.Error("Ошибка при получении состояния чата из Redis",
			"error", err,
			"chat_id", chatID,
		)

		return models.StateIdle, fmt.Errorf("ошибка при получении состояния чата из Redis: %w", err)
	}

	state, err := strconv.Atoi(value)
	if err != nil {
		r.logger.Warn("Некорректное состояние чата в Redis",
			"value", value,
			"chat_id", chatID,
		)

		return models.StateIdle, nil
	}

	return models.ChatState(state), nil
}

func (r *RedisChatStateRepository) SetState(ctx context.Context, chatID string, state models.ChatState) error {
	key := chatStateKeyPrefix + chatID

	if state == models.StateIdle {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("ошибка при удалении состояния чата из Redis: %w", err)
		}

		return nil
	}

	if err := r.client.Set(ctx, key, int(state), r.ttl).Err(); err != nil {
		r.logger.Error("Ошибка при сохранении состояния чата в Redis",
			"error", err,
			"chat_id", chatID,
		)

		return fmt.Errorf("ошибка при сохранении состояния чата в Redis: %w", err)
	}

	r.logger.Debug("Состояние чата сохранено",
		"chat_id", chatID,
		"state", state.String(),
		"ttl", r.ttl,
	)

	return nil
}

func (r *RedisChatStateRepository) Close() error {
	return r.client.Close()
}
