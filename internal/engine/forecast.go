package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"example.com/cfo-ai/backend/internal/models"
)

const (
	// DefaultHorizonDays — горизонт прогноза по умолчанию.
	DefaultHorizonDays = 90

	// trailingEntries — сколько последних записей леджера участвуют в
	// оценке базового уровня.
	trailingEntries = 90

	// baseValueFloor — нижняя граница базового уровня, защищает от
	// вырожденного прогноза около нуля.
	baseValueFloor = 100_000

	// defaultBaseValue — фиксированная база прогноза при пустом леджере.
	defaultBaseValue = 500_000
)

// ForecastParams — параметры генератора прогноза. Seasonality и Volatility
// лежат в [0,1]. Start закрепляет первый день прогноза; нулевое значение
// означает «день после последней записи леджера» — при пустом леджере Start
// обязателен, иначе результат зависел бы от системных часов.
type ForecastParams struct {
	HorizonDays int
	Seasonality float64
	Volatility  float64
	Start       time.Time
}

// Forecast строит упорядоченную последовательность дневных прогнозов длиной
// HorizonDays. Вся случайность берется из переданного rng: вызовы с
// одинаковым леджером, параметрами и зерном дают побитово одинаковый
// результат.
func Forecast(ledger []models.Transaction, params ForecastParams, rng *rand.Rand) ([]models.DailyForecast, error) {
	if err := validateForecastParams(params, rng); err != nil {
		return nil, err
	}

	horizon := params.HorizonDays
	if horizon == 0 {
		horizon = DefaultHorizonDays
	}

	if len(ledger) == 0 {
		if params.Start.IsZero() {
			return nil, fmt.Errorf("%w: start date is required for an empty ledger", ErrInvalidParameter)
		}
		return DefaultForecast(horizon, params.Start, rng), nil
	}

	start := params.Start
	if start.IsZero() {
		start = ledger[len(ledger)-1].Date.AddDate(0, 0, 1)
	}

	base := baseValue(ledger)

	forecasts := make([]models.DailyForecast, 0, horizon)
	for i := 0; i < horizon; i++ {
		date := start.AddDate(0, 0, i)
		progress := float64(i) / float64(horizon)

		weekly := weeklyMultiplier(date.Weekday())
		monthly := monthlyMultiplier(date.Day())
		seasonal := 1.0 + math.Sin(2*math.Pi*float64(i)/30)*params.Seasonality
		growth := 1.0 + progress*0.15
		random := 1.0 + (rng.Float64()-0.5)*params.Volatility

		p50 := roundMoney(base * weekly * monthly * seasonal * growth * random)

		// Интервалы расширяются с удалением горизонта.
		spread := 1.0 + progress*0.5
		p5 := roundMoney(float64(p50) * (0.7 - params.Volatility*0.3) * spread)
		p95 := roundMoney(float64(p50) * (1.3 + params.Volatility*0.3) * spread)
		p5, p50, p95 = clampBands(p5, p50, p95)

		confidence := round2(math.Max(0.5, 0.95-progress*0.45))

		forecasts = append(forecasts, models.DailyForecast{
			Date:       date,
			P5:         p5,
			P50:        p50,
			P95:        p95,
			Confidence: confidence,
		})
	}

	return forecasts, nil
}

// DefaultForecast — явный резервный генератор для пустого леджера:
// фиксированная база, будничный и трендовый множители, без сезонных и
// месячных эффектов.
func DefaultForecast(horizonDays int, start time.Time, rng *rand.Rand) []models.DailyForecast {
	forecasts := make([]models.DailyForecast, 0, horizonDays)

	for i := 0; i < horizonDays; i++ {
		date := start.AddDate(0, 0, i)
		progress := float64(i) / float64(horizonDays)

		multiplier := 1.0
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			multiplier = 0.5
		}
		trend := 1.0 + progress*0.1
		random := 0.9 + rng.Float64()*0.2

		p50 := roundMoney(defaultBaseValue * multiplier * trend * random)

		forecasts = append(forecasts, models.DailyForecast{
			Date:       date,
			P5:         roundMoney(float64(p50) * 0.7),
			P50:        p50,
			P95:        roundMoney(float64(p50) * 1.3),
			Confidence: round2(math.Max(0.5, 0.9-progress*0.4)),
		})
	}

	return forecasts
}

func validateForecastParams(params ForecastParams, rng *rand.Rand) error {
	if rng == nil {
		return fmt.Errorf("%w: rng is required", ErrInvalidParameter)
	}
	if params.HorizonDays < 0 {
		return fmt.Errorf("%w: horizonDays must be positive, got %d", ErrInvalidParameter, params.HorizonDays)
	}
	if params.Seasonality < 0 || params.Seasonality > 1 {
		return fmt.Errorf("%w: seasonality must be within [0,1], got %g", ErrInvalidParameter, params.Seasonality)
	}
	if params.Volatility < 0 || params.Volatility > 1 {
		return fmt.Errorf("%w: volatility must be within [0,1], got %g", ErrInvalidParameter, params.Volatility)
	}
	return nil
}

// baseValue — средний остаток по последним записям леджера с нижней
// границей baseValueFloor.
func baseValue(ledger []models.Transaction) float64 {
	recent := ledger
	if len(recent) > trailingEntries {
		recent = recent[len(recent)-trailingEntries:]
	}

	var sum float64
	for _, tx := range recent {
		sum += float64(tx.Balance)
	}

	return math.Max(sum/float64(len(recent)), baseValueFloor)
}

// weeklyMultiplier моделирует недельный цикл: провал в выходные, пик в
// пятницу, плавный рост по будням.
func weeklyMultiplier(day time.Weekday) float64 {
	switch day {
	case time.Saturday, time.Sunday:
		return 0.4
	case time.Friday:
		return 1.3
	default:
		return 1.0 + float64(day-1)*0.05
	}
}

// monthlyMultiplier моделирует платежный цикл: пики зарплат и счетов в
// начале и конце месяца, спад в середине.
func monthlyMultiplier(dayOfMonth int) float64 {
	switch {
	case dayOfMonth <= 5 || dayOfMonth >= 25:
		return 1.4
	case dayOfMonth >= 10 && dayOfMonth <= 20:
		return 0.8
	default:
		return 1.0
	}
}

// clampBands восстанавливает порядок p5 <= p50 <= p95: на дальнем горизонте
// расширение интервала может поднять нижнюю границу выше медианы.
func clampBands(p5, p50, p95 int64) (int64, int64, int64) {
	if p5 > p50 {
		p5 = p50
	}
	if p95 < p50 {
		p95 = p50
	}
	return p5, p50, p95
}

func roundMoney(v float64) int64 {
	return int64(math.Round(v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
