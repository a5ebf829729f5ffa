package storage

import (
	"log/slog"

	"github.com/central-university-dev/go-vacation-bot/internal/config"
	"github.com/central-university-dev/go-vacation-bot/internal/database"
	"github.com/central-university-dev/go-vacation-bot/internal/domain/errors"
	"github.com/central-university-dev/go-vacation-bot/pkg/txs"
)

// NewBackend picks the backend named by STORAGE_BACKEND. db may be nil for the file backend.
func NewBackend(cfg *config.Config, db *database.PostgresDB, logger *slog.Logger) (Backend, error) {
	switch cfg.StorageBackend {
	case config.FileStorage, "":
		logger.Info("Используется файловое хранилище", "path", cfg.DataFile)
		return NewFileBackend(cfg.DataFile), nil
	case config.PostgresStorage:
		if db == nil {
			return nil, &errors.ErrUnknownStorageBackend{Backend: string(cfg.StorageBackend) + " (нет подключения)"}
		}

		logger.Info("Используется хранилище PostgreSQL")

		return NewPostgresBackend(db, txs.NewTxManager(db.Pool, logger)), nil
	default:
		return nil, &errors.ErrUnknownStorageBackend{Backend: string(cfg.StorageBackend)}
	}
}
