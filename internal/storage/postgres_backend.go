package storage

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/central-university-dev/go-vacation-bot/internal/database"
	customerrors "github.com/central-university-dev/go-vacation-bot/internal/domain/errors"
	"github.com/central-university-dev/go-vacation-bot/pkg/txs"
)

const (
	documentsTable = "vacation_documents"
	documentRowID  = 1
)

// PostgresBackend keeps the document as a single JSONB row.
// Inside Atomically the row is read with FOR UPDATE, so concurrent instances queue up.
type PostgresBackend struct {
	db        *database.PostgresDB
	txManager *txs.TxManager
	sq        sq.StatementBuilderType
}

func NewPostgresBackend(db *database.PostgresDB, txManager *txs.TxManager) *PostgresBackend {
	return &PostgresBackend{
		db:        db,
		txManager: txManager,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (b *PostgresBackend) Read(ctx context.Context) ([]byte, error) {
	querier := txs.GetQuerier(ctx, b.db.Pool)

	selectQuery := b.sq.Select("document").
		From(documentsTable).
		Where(sq.Eq{"id": documentRowID})

	if txs.InTransaction(ctx) {
		selectQuery = selectQuery.Suffix("FOR UPDATE")
	}

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "чтение документа", Cause: err}
	}

	var data []byte

	err = querier.QueryRow(ctx, query, args...).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "чтение документа", Cause: err}
	}

	return data, nil
}

func (b *PostgresBackend) Write(ctx context.Context, data []byte) error {
	querier := txs.GetQuerier(ctx, b.db.Pool)

	upsertQuery := b.sq.Insert(documentsTable).
		Columns("id", "document", "updated_at").
		Values(documentRowID, string(data), time.Now()).
		Suffix("ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at")

	query, args, err := upsertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "сохранение документа", Cause: err}
	}

	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение документа", Cause: err}
	}

	return nil
}

func (b *PostgresBackend) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.txManager.WithTransaction(ctx, fn)
}
