package engine

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"
)

// TestForecastLengthAndOrdering проверяет длину горизонта, упорядоченность
// дат и инвариант p5 <= p50 <= p95 с уверенностью в [0.4, 0.99].
func TestForecastLengthAndOrdering(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	ledger := flatLedger(120, 300_000, 200_000, end)

	forecasts, err := Forecast(ledger, ForecastParams{
		HorizonDays: 90,
		Seasonality: 0.5,
		Volatility:  0.3,
	}, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(forecasts) != 90 {
		t.Fatalf("expected 90 forecasts, got %d", len(forecasts))
	}

	if !forecasts[0].Date.Equal(end.AddDate(0, 0, 1)) {
		t.Fatalf("expected forecast to start the day after the ledger, got %v", forecasts[0].Date)
	}

	for i, forecast := range forecasts {
		if forecast.P5 > forecast.P50 || forecast.P50 > forecast.P95 {
			t.Fatalf("day %d: band order violated: p5=%d p50=%d p95=%d", i, forecast.P5, forecast.P50, forecast.P95)
		}
		if forecast.Confidence < 0.4 || forecast.Confidence > 0.99 {
			t.Fatalf("day %d: confidence %v out of [0.4, 0.99]", i, forecast.Confidence)
		}
	}
}

// TestForecastDeterministicWithSeed проверяет воспроизводимость прогноза
// при одинаковом зерне.
func TestForecastDeterministicWithSeed(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	ledger := flatLedger(90, 300_000, 200_000, end)
	params := ForecastParams{HorizonDays: 60, Seasonality: 0.4, Volatility: 0.6}

	first, err := Forecast(ledger, params, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := Forecast(ledger, params, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical forecasts for identical seeds")
	}
}

// TestForecastZeroVolatilityBands проверяет точные формулы границ при
// нулевой волатильности: p5 = p50*0.7*spread, p95 = p50*1.3*spread.
func TestForecastZeroVolatilityBands(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	ledger := flatLedger(90, 300_000, 200_000, end)

	forecasts, err := Forecast(ledger, ForecastParams{
		HorizonDays: 90,
		Seasonality: 0.5,
	}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// На дальнем хвосте 0.7*spread превышает 1 и включается клэмп, поэтому
	// точная формула проверяется до этой границы.
	for i := 0; i < 60; i++ {
		spread := 1.0 + float64(i)/90*0.5
		forecast := forecasts[i]

		wantP5 := int64(math.Round(float64(forecast.P50) * 0.7 * spread))
		wantP95 := int64(math.Round(float64(forecast.P50) * 1.3 * spread))

		if forecast.P5 != wantP5 {
			t.Fatalf("day %d: expected p5 %d, got %d", i, wantP5, forecast.P5)
		}
		if forecast.P95 != wantP95 {
			t.Fatalf("day %d: expected p95 %d, got %d", i, wantP95, forecast.P95)
		}
	}
}

// TestForecastConfidenceDecay проверяет монотонное снижение уверенности с
// горизонтом и округление до двух знаков.
func TestForecastConfidenceDecay(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	ledger := flatLedger(90, 300_000, 200_000, end)

	forecasts, err := Forecast(ledger, ForecastParams{HorizonDays: 90}, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if forecasts[0].Confidence != 0.95 {
		t.Fatalf("expected first-day confidence 0.95, got %v", forecasts[0].Confidence)
	}

	for i := 1; i < len(forecasts); i++ {
		if forecasts[i].Confidence > forecasts[i-1].Confidence {
			t.Fatalf("day %d: confidence %v grew above %v", i, forecasts[i].Confidence, forecasts[i-1].Confidence)
		}
	}
}

// TestForecastInvalidParameters проверяет отказ на параметрах вне
// диапазона.
func TestForecastInvalidParameters(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	ledger := flatLedger(30, 300_000, 200_000, end)
	rng := rand.New(rand.NewSource(1))

	if _, err := Forecast(ledger, ForecastParams{Seasonality: 1.5}, rng); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for seasonality, got %v", err)
	}
	if _, err := Forecast(ledger, ForecastParams{Volatility: -0.1}, rng); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for volatility, got %v", err)
	}
	if _, err := Forecast(ledger, ForecastParams{HorizonDays: -1}, rng); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for horizon, got %v", err)
	}
	if _, err := Forecast(ledger, ForecastParams{}, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for nil rng, got %v", err)
	}
}

// TestForecastEmptyLedgerFallback проверяет явный резервный генератор:
// фиксированная база, границы 0.7/1.3 без расширения, стартовая дата
// обязательна.
func TestForecastEmptyLedgerFallback(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	forecasts, err := Forecast(nil, ForecastParams{
		HorizonDays: 30,
		Seasonality: 0.5,
		Volatility:  0.3,
		Start:       start,
	}, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(forecasts) != 30 {
		t.Fatalf("expected 30 forecasts, got %d", len(forecasts))
	}

	for i, forecast := range forecasts {
		wantP5 := int64(math.Round(float64(forecast.P50) * 0.7))
		wantP95 := int64(math.Round(float64(forecast.P50) * 1.3))
		if forecast.P5 != wantP5 || forecast.P95 != wantP95 {
			t.Fatalf("day %d: expected fallback bands %d/%d, got %d/%d", i, wantP5, wantP95, forecast.P5, forecast.P95)
		}
	}

	if _, err := Forecast(nil, ForecastParams{HorizonDays: 30}, rand.New(rand.NewSource(5))); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter without start date, got %v", err)
	}
}
