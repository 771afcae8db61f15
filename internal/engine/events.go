package engine

import (
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"example.com/cfo-ai/backend/internal/models"
)

// ApplyEvents накладывает дневные события поверх базового прогноза: крупные
// расчетные дни, провал в середине месяца, пятничные всплески и редкие шоки.
// Чистый проход без межсуточного состояния; вход не мутирует, возвращается
// новый срез той же длины и порядка.
func ApplyEvents(forecasts []models.DailyForecast, rng *rand.Rand) []models.DailyForecast {
	adjusted := make([]models.DailyForecast, len(forecasts))

	for i, forecast := range forecasts {
		day := forecast
		dayOfMonth := day.Date.Day()

		// Дни крупных платежей: зарплата, расчеты с поставщиками.
		if dayOfMonth == 5 || dayOfMonth == 20 {
			day.P50 = roundMoney(float64(day.P50) * 1.5)
			day.P95 = roundMoney(float64(day.P95) * 1.6)
			day.Confidence = round2(math.Min(0.95, day.Confidence+0.1))
		}

		// Просадка в середине месяца.
		if dayOfMonth >= 12 && dayOfMonth <= 18 {
			day.P50 = roundMoney(float64(day.P50) * 0.7)
			day.P5 = roundMoney(float64(day.P5) * 0.6)
		}

		// Пятничный всплеск с вероятностью 50%.
		if day.Date.Weekday() == time.Friday && rng.Float64() > 0.5 {
			day.P95 = roundMoney(float64(day.P95) * 1.4)
		}

		// Неожиданный шок с вероятностью 5%, независимо от остальных правил.
		if rng.Float64() < 0.05 {
			multiplier := 0.5
			if rng.Float64() > 0.5 {
				multiplier = 1.8
			}
			day.P50 = roundMoney(float64(day.P50) * multiplier)
			day.Confidence = round2(math.Max(0.4, day.Confidence-0.2))
		}

		adjusted[i] = restoreBandOrder(day)
	}

	return adjusted
}

// restoreBandOrder пересортировывает три значения, если наложение событий
// нарушило порядок p5 <= p50 <= p95. Нарушение исправляется и логируется,
// наружу запись с перепутанными границами не уходит.
func restoreBandOrder(day models.DailyForecast) models.DailyForecast {
	if day.P5 <= day.P50 && day.P50 <= day.P95 {
		return day
	}

	bands := []int64{day.P5, day.P50, day.P95}
	sort.Slice(bands, func(i, j int) bool { return bands[i] < bands[j] })

	slog.Warn("forecast band order violated, re-sorted",
		slog.Time("date", day.Date),
		slog.Int64("p5", day.P5),
		slog.Int64("p50", day.P50),
		slog.Int64("p95", day.P95),
	)

	day.P5, day.P50, day.P95 = bands[0], bands[1], bands[2]
	return day
}
