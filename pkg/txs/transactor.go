package txs

import (
	"context"
	"fmt"
	"log/slog"
)

type TxManager struct {
	db     Beginner
	logger *slog.Logger
}

func NewTxManager(db Beginner, logger *slog.Logger) *TxManager {
	return &TxManager{
		db:     db,
		logger: logger,
	}
}

// WithTransaction runs txFunc inside a transaction. When ctx already carries one,
// txFunc joins it and commit is left to the outer call.
func (t *TxManager) WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error {
	if InTransaction(ctx) {
		return txFunc(ctx)
	}

	tx, err := t.db.Begin(ctx)
	if err != nil {
		t.logger.Error("Ошибка при начале транзакции", "error", err)
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	txCtx := injectTx(ctx, tx)

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Паника в транзакции, выполняем rollback", "panic", r)

			_ = tx.Rollback(ctx)

			panic(r)
		}
	}()

	if err := txFunc(txCtx); err != nil {
		t.logger.Warn("Ошибка в транзакции, выполняем rollback", "error", err)

		if rbErr := tx.Rollback(ctx); rbErr != nil {
			t.logger.Error("Ошибка при rollback транзакции", "error", rbErr)
			return fmt.Errorf("ошибка в транзакции: %w, ошибка rollback: %v", err, rbErr)
		}

		return fmt.Errorf("ошибка в транзакции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.logger.Error("Ошибка при commit транзакции", "error", err)
		return fmt.Errorf("ошибка при commit транзакции: %w", err)
	}

	return nil
}
