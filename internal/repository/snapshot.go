package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cfo-ai/backend/internal/models"
)

type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository создает репозиторий срезов прогноза.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create сохраняет срез прогноза. Дневные полосы хранятся одним JSONB
// документом: срез читается и пишется только целиком.
func (r *SnapshotRepository) Create(ctx context.Context, userID uuid.UUID, horizonDays int, forecasts []models.DailyForecast) (models.ForecastSnapshot, error) {
	payload, err := json.Marshal(forecasts)
	if err != nil {
		return models.ForecastSnapshot{}, fmt.Errorf("marshal forecasts: %w", err)
	}

	snapshot := models.ForecastSnapshot{
		UserID:      userID,
		HorizonDays: horizonDays,
		Forecasts:   forecasts,
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO forecast_snapshots (user_id, horizon_days, forecasts)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		userID, horizonDays, payload,
	).Scan(&snapshot.ID, &snapshot.CreatedAt)
	if err != nil {
		return models.ForecastSnapshot{}, err
	}

	return snapshot, nil
}

// Latest возвращает последний срез прогноза пользователя.
func (r *SnapshotRepository) Latest(ctx context.Context, userID uuid.UUID) (models.ForecastSnapshot, error) {
	var snapshot models.ForecastSnapshot
	var payload []byte

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, horizon_days, forecasts, created_at
		 FROM forecast_snapshots
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&snapshot.ID, &snapshot.UserID, &snapshot.HorizonDays, &payload, &snapshot.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return snapshot, ErrNotFound
		}
		return snapshot, err
	}

	if err := json.Unmarshal(payload, &snapshot.Forecasts); err != nil {
		return snapshot, fmt.Errorf("unmarshal forecasts: %w", err)
	}

	return snapshot, nil
}

// PruneOlderThan удаляет срезы старше заданного числа дней, оставляя
// последний по каждому пользователю. Возвращает число удаленных строк.
func (r *SnapshotRepository) PruneOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM forecast_snapshots s
		 WHERE s.created_at < now() - make_interval(days => $1)
		   AND s.id <> (
			SELECT id FROM forecast_snapshots
			WHERE user_id = s.user_id
			ORDER BY created_at DESC
			LIMIT 1
		 )`,
		days,
	)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
