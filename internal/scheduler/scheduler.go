// Пакет scheduler считает ночные срезы прогноза по расписанию cron.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"example.com/cfo-ai/backend/internal/config"
	"example.com/cfo-ai/backend/internal/engine"
	"example.com/cfo-ai/backend/internal/industry"
	"example.com/cfo-ai/backend/internal/notifications"
	"example.com/cfo-ai/backend/internal/repository"
)

// Срезы старше этого возраста чистятся после каждого прогона.
const retentionDays = 30

const runTimeout = 5 * time.Minute

type Scheduler struct {
	cron      *cron.Cron
	ledger    *repository.LedgerRepository
	users     *repository.UserRepository
	snapshots *repository.SnapshotRepository
	hub       *notifications.Hub
	engine    config.EngineConfig
}

// New создает планировщик срезов прогноза.
func New(ledger *repository.LedgerRepository, users *repository.UserRepository, snapshots *repository.SnapshotRepository, hub *notifications.Hub, cfg config.EngineConfig) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		ledger:    ledger,
		users:     users,
		snapshots: snapshots,
		hub:       hub,
		engine:    cfg,
	}
}

// Start регистрирует задачу по cron-выражению и запускает планировщик.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	slog.Info("snapshot scheduler started", slog.String("spec", spec))
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего прогона.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce пересчитывает срезы для всех пользователей с леджером. Ошибка по
// одному пользователю не прерывает остальных.
func (s *Scheduler) RunOnce(ctx context.Context) {
	userIDs, err := s.ledger.ListUserIDs(ctx)
	if err != nil {
		slog.Error("snapshot run failed to list users", slog.String("error", err.Error()))
		return
	}

	created := 0
	for _, userID := range userIDs {
		if err := s.snapshotUser(ctx, userID); err != nil {
			slog.Error("snapshot failed",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		created++
	}

	pruned, err := s.snapshots.PruneOlderThan(ctx, retentionDays)
	if err != nil {
		slog.Error("snapshot prune failed", slog.String("error", err.Error()))
	}

	slog.Info("snapshot run finished",
		slog.Int("users", len(userIDs)),
		slog.Int("created", created),
		slog.Int64("pruned", pruned),
	)
}

func (s *Scheduler) snapshotUser(ctx context.Context, userID uuid.UUID) error {
	ledger, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	preset := industry.Default()
	user, err := s.users.GetByID(ctx, userID)
	if err == nil {
		if found, ok := industry.Preset(user.Industry); ok {
			preset = found
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	forecasts, err := engine.Forecast(ledger, engine.ForecastParams{
		HorizonDays: s.engine.HorizonDays,
		Seasonality: preset.Seasonality,
		Volatility:  preset.Volatility,
	}, rng)
	if err != nil {
		return err
	}
	forecasts = engine.ApplyEvents(forecasts, rng)

	snapshot, err := s.snapshots.Create(ctx, userID, s.engine.HorizonDays, forecasts)
	if err != nil {
		return err
	}

	s.hub.Publish(userID, notifications.Event{
		Type: notifications.EventSnapshotCreated,
		Data: map[string]interface{}{
			"snapshot_id":  snapshot.ID.String(),
			"horizon_days": snapshot.HorizonDays,
		},
	})

	return nil
}
