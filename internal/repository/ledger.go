package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cfo-ai/backend/internal/models"
)

type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository создает репозиторий леджера транзакций.
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Replace атомарно заменяет леджер пользователя новым набором транзакций.
// Импорт выписки — всегда полная перезапись: частичные слияния ломают
// накопительный остаток.
func (r *LedgerRepository) Replace(ctx context.Context, userID uuid.UUID, ledger []models.Transaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace ledger: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}

	rows := make([][]any, 0, len(ledger))
	for _, entry := range ledger {
		rows = append(rows, []any{
			entry.ID, userID, entry.Date, entry.Amount,
			entry.Description, entry.Category, string(entry.Type), entry.Balance,
		})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"transactions"},
		[]string{"id", "user_id", "date", "amount", "description", "category", "type", "balance"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("insert ledger: %w", err)
	}

	return tx.Commit(ctx)
}

// ListByUser возвращает леджер пользователя в хронологическом порядке.
func (r *LedgerRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, date, amount, description, category, type, balance
		 FROM transactions
		 WHERE user_id = $1
		 ORDER BY date, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ledger []models.Transaction
	for rows.Next() {
		var entry models.Transaction
		var txType string
		if err := rows.Scan(&entry.ID, &entry.Date, &entry.Amount, &entry.Description, &entry.Category, &txType, &entry.Balance); err != nil {
			return nil, err
		}
		entry.Type = models.TransactionType(txType)
		ledger = append(ledger, entry)
	}

	return ledger, rows.Err()
}

// ListUserIDs возвращает пользователей, у которых есть хотя бы одна
// транзакция. Используется планировщиком ночных срезов.
func (r *LedgerRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT user_id FROM transactions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
