package handlers

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/cfo-ai/backend/internal/auth"
	"example.com/cfo-ai/backend/internal/config"
	"example.com/cfo-ai/backend/internal/engine"
	"example.com/cfo-ai/backend/internal/industry"
	"example.com/cfo-ai/backend/internal/models"
	"example.com/cfo-ai/backend/internal/repository"
)

type AnalyticsHandler struct {
	Ledger    *repository.LedgerRepository
	Users     *repository.UserRepository
	Snapshots *repository.SnapshotRepository
	Engine    config.EngineConfig

	now func() time.Time
}

// NewAnalyticsHandler создает обработчик аналитики.
func NewAnalyticsHandler(ledger *repository.LedgerRepository, users *repository.UserRepository, snapshots *repository.SnapshotRepository, cfg config.EngineConfig) *AnalyticsHandler {
	return &AnalyticsHandler{
		Ledger:    ledger,
		Users:     users,
		Snapshots: snapshots,
		Engine:    cfg,
		now:       time.Now,
	}
}

type ForecastResponse struct {
	HorizonDays int                    `json:"horizon_days"`
	Seed        int64                  `json:"seed"`
	Forecasts   []models.DailyForecast `json:"forecasts"`
}

type AggregateResponse struct {
	WindowDays int                    `json:"window_days"`
	Aggregate  models.PeriodAggregate `json:"aggregate"`
}

type KPIResponse struct {
	WindowDays int               `json:"window_days"`
	KPI        models.KPIMetrics `json:"kpi"`
}

type PositionsResponse struct {
	Seed     int64         `json:"seed"`
	Accounts []models.ARAP `json:"accounts"`
	Loans    []models.Loan `json:"loans"`
}

type AnalysisResponse struct {
	Seed     int64             `json:"seed"`
	Analysis models.AIAnalysis `json:"analysis"`
}

// Forecast строит вероятностный прогноз остатка с наложением событий.
// Параметр seed делает ответ воспроизводимым; без него зерно берется из
// текущего времени и возвращается в ответе.
func (h *AnalyticsHandler) Forecast(c echo.Context) error {
	if _, ok := auth.UserIDFromContext(c); !ok {
		return unauthorized(c)
	}

	horizonDays, err := h.horizonDays(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	seed, err := h.seed(c)
	if err != nil {
		return badRequest(c, "invalid seed")
	}

	ledger, preset, err := h.loadInputs(c)
	if err != nil {
		return serverError(c)
	}

	forecasts, err := h.buildForecast(ledger, preset, horizonDays, seed)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, ForecastResponse{
		HorizonDays: horizonDays,
		Seed:        seed,
		Forecasts:   forecasts,
	})
}

// Aggregate возвращает суммы притока и оттока за скользящее окно.
func (h *AnalyticsHandler) Aggregate(c echo.Context) error {
	if _, ok := auth.UserIDFromContext(c); !ok {
		return unauthorized(c)
	}

	windowDays := h.Engine.WindowDays
	if raw := c.QueryParam("window_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return badRequest(c, "invalid window_days")
		}
		windowDays = parsed
	}

	ledger, _, err := h.loadInputs(c)
	if err != nil {
		return serverError(c)
	}

	aggregate, err := engine.Aggregate(ledger, windowDays)
	if err != nil {
		if errors.Is(err, engine.ErrEmptyLedger) {
			return notFound(c, "no transactions in window")
		}
		if errors.Is(err, engine.ErrInvalidParameter) {
			return badRequest(c, "invalid window_days")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, AggregateResponse{WindowDays: windowDays, Aggregate: aggregate})
}

// KPI возвращает метрики здоровья бизнеса за скользящее окно.
func (h *AnalyticsHandler) KPI(c echo.Context) error {
	if _, ok := auth.UserIDFromContext(c); !ok {
		return unauthorized(c)
	}

	windowDays := h.Engine.WindowDays
	if raw := c.QueryParam("window_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return badRequest(c, "invalid window_days")
		}
		windowDays = parsed
	}

	ledger, preset, err := h.loadInputs(c)
	if err != nil {
		return serverError(c)
	}

	kpi, err := engine.Score(ledger, windowDays)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidParameter) {
			return badRequest(c, "invalid window_days")
		}
		return serverError(c)
	}

	// Циклы оборачиваемости приходят из отраслевого профиля.
	kpi.DSO = preset.DSO
	kpi.DPO = preset.DPO
	kpi.DIO = preset.DIO

	return c.JSON(http.StatusOK, KPIResponse{WindowDays: windowDays, KPI: kpi})
}

// Positions возвращает синтезированные дебиторку, кредиторку и займы.
func (h *AnalyticsHandler) Positions(c echo.Context) error {
	if _, ok := auth.UserIDFromContext(c); !ok {
		return unauthorized(c)
	}

	seed, err := h.seed(c)
	if err != nil {
		return badRequest(c, "invalid seed")
	}

	ledger, _, err := h.loadInputs(c)
	if err != nil {
		return serverError(c)
	}

	accounts, loans := engine.SynthesizePositions(ledger, h.now(), rand.New(rand.NewSource(seed)))
	if accounts == nil {
		accounts = []models.ARAP{}
	}
	if loans == nil {
		loans = []models.Loan{}
	}

	return c.JSON(http.StatusOK, PositionsResponse{Seed: seed, Accounts: accounts, Loans: loans})
}

// Analysis прогоняет полный конвейер: KPI, прогноз с событиями и
// правила инсайтов с рекомендациями.
func (h *AnalyticsHandler) Analysis(c echo.Context) error {
	if _, ok := auth.UserIDFromContext(c); !ok {
		return unauthorized(c)
	}

	seed, err := h.seed(c)
	if err != nil {
		return badRequest(c, "invalid seed")
	}

	ledger, preset, err := h.loadInputs(c)
	if err != nil {
		return serverError(c)
	}

	kpi, err := engine.Score(ledger, h.Engine.WindowDays)
	if err != nil {
		return serverError(c)
	}
	kpi.DSO = preset.DSO
	kpi.DPO = preset.DPO
	kpi.DIO = preset.DIO

	forecasts, err := h.buildForecast(ledger, preset, h.Engine.HorizonDays, seed)
	if err != nil {
		return serverError(c)
	}

	analysis := engine.Analyze(kpi, forecasts, preset)

	return c.JSON(http.StatusOK, AnalysisResponse{Seed: seed, Analysis: analysis})
}

// Snapshot возвращает последний сохраненный срез прогноза.
func (h *AnalyticsHandler) Snapshot(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	snapshot, err := h.Snapshots.Latest(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "no snapshot yet")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, snapshot)
}

func (h *AnalyticsHandler) buildForecast(ledger []models.Transaction, preset models.IndustryPreset, horizonDays int, seed int64) ([]models.DailyForecast, error) {
	rng := rand.New(rand.NewSource(seed))

	params := engine.ForecastParams{
		HorizonDays: horizonDays,
		Seasonality: preset.Seasonality,
		Volatility:  preset.Volatility,
	}
	if len(ledger) == 0 {
		params.Start = h.now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	}

	forecasts, err := engine.Forecast(ledger, params, rng)
	if err != nil {
		return nil, err
	}

	return engine.ApplyEvents(forecasts, rng), nil
}

func (h *AnalyticsHandler) loadInputs(c echo.Context) ([]models.Transaction, models.IndustryPreset, error) {
	userID, _ := auth.UserIDFromContext(c)

	ledger, err := h.Ledger.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return nil, models.IndustryPreset{}, err
	}

	preset := industry.Default()
	user, err := h.Users.GetByID(c.Request().Context(), userID)
	if err == nil {
		if found, ok := industry.Preset(user.Industry); ok {
			preset = found
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, models.IndustryPreset{}, err
	}

	return ledger, preset, nil
}

func (h *AnalyticsHandler) horizonDays(c echo.Context) (int, error) {
	horizonDays := h.Engine.HorizonDays
	if raw := c.QueryParam("horizon_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return 0, errors.New("invalid horizon_days")
		}
		horizonDays = parsed
	}

	if horizonDays > h.Engine.MaxHorizonDays {
		return 0, errors.New("horizon_days exceeds maximum")
	}
	return horizonDays, nil
}

func (h *AnalyticsHandler) seed(c echo.Context) (int64, error) {
	if raw := c.QueryParam("seed"); raw != "" {
		return strconv.ParseInt(raw, 10, 64)
	}
	return h.now().UnixNano(), nil
}
