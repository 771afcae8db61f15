package engine

import (
	"fmt"

	"example.com/cfo-ai/backend/internal/models"
)

type analysisContext struct {
	kpi       models.KPIMetrics
	forecasts []models.DailyForecast
	industry  models.IndustryPreset
}

type insightRule struct {
	name  string
	check func(ctx analysisContext) (models.Insight, bool)
}

type recommendationRule struct {
	name  string
	check func(ctx analysisContext) (models.Recommendation, bool)
}

// Правила оцениваются строго в порядке объявления: при одинаковых входах
// порядок инсайтов и рекомендаций детерминирован.
var insightRules = []insightRule{
	{name: "cashflow", check: cashFlowInsight},
	{name: "runway", check: runwayInsight},
	{name: "liquidity", check: liquidityInsight},
	{name: "seasonality", check: seasonalityInsight},
	{name: "industry_volatility", check: industryVolatilityInsight},
	{name: "cash_gap", check: cashGapInsight},
	{name: "risk_score", check: riskScoreInsight},
}

var recommendationRules = []recommendationRule{
	{name: "cashflow_optimization", check: cashFlowRecommendation},
	{name: "financing", check: financingRecommendation},
	{name: "receivables", check: receivablesRecommendation},
	{name: "reserve_fund", check: reserveFundRecommendation},
}

// Analyze прогоняет KPI, прогноз и отраслевые параметры через
// упорядоченную таблицу пороговых правил. Чистая функция: без I/O,
// глобального состояния и случайности.
func Analyze(kpi models.KPIMetrics, forecasts []models.DailyForecast, industry models.IndustryPreset) models.AIAnalysis {
	ctx := analysisContext{kpi: kpi, forecasts: forecasts, industry: industry}

	insights := make([]models.Insight, 0, len(insightRules))
	for _, rule := range insightRules {
		if insight, ok := rule.check(ctx); ok {
			insights = append(insights, insight)
		}
	}

	recommendations := make([]models.Recommendation, 0, len(recommendationRules))
	for _, rule := range recommendationRules {
		if recommendation, ok := rule.check(ctx); ok {
			recommendations = append(recommendations, recommendation)
		}
	}

	return models.AIAnalysis{
		CashFlowHealth:  cashFlowHealth(kpi),
		LiquidityStatus: liquidityStatus(kpi),
		RiskLevel:       riskLevel(kpi),
		Insights:        insights,
		Recommendations: recommendations,
		ForecastSummary: models.ForecastSummary{
			Next30Days: summarizeForecast(forecasts, 30),
			Next90Days: summarizeForecast(forecasts, 90),
		},
	}
}

func cashFlowHealth(kpi models.KPIMetrics) models.HealthStatus {
	if kpi.CashFlow > 0 {
		return models.HealthGood
	}
	return models.HealthWarning
}

func liquidityStatus(kpi models.KPIMetrics) models.HealthStatus {
	switch {
	case kpi.LiquidityRatio > 2:
		return models.HealthGood
	case kpi.LiquidityRatio > 1:
		return models.HealthWarning
	default:
		return models.HealthCritical
	}
}

func riskLevel(kpi models.KPIMetrics) models.RiskLevel {
	switch {
	case kpi.RiskScore < 30:
		return models.RiskLow
	case kpi.RiskScore < 60:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

func cashFlowInsight(ctx analysisContext) (models.Insight, bool) {
	insight := models.Insight{
		Type:           "cashflow",
		Severity:       models.SeverityInfo,
		Title:          "Положительный денежный поток",
		Description:    fmt.Sprintf("За последние 3 месяца денежный поток составил %s.", formatMillions(ctx.kpi.CashFlow)),
		Recommendation: "Продолжайте поддерживать положительную динамику",
	}

	if ctx.kpi.CashFlow <= 0 {
		insight.Severity = models.SeverityWarning
		insight.Title = "Отрицательный денежный поток"
		insight.Recommendation = "Необходимо сократить расходы или увеличить доходы"
	}

	return insight, true
}

func runwayInsight(ctx analysisContext) (models.Insight, bool) {
	severity := models.SeverityInfo
	recommendation := "Runway находится на безопасном уровне"

	switch {
	case ctx.kpi.Runway < 3:
		severity = models.SeverityCritical
		recommendation = "Рекомендуется рассмотреть варианты привлечения финансирования"
	case ctx.kpi.Runway < 6:
		severity = models.SeverityWarning
		recommendation = "Рекомендуется рассмотреть варианты привлечения финансирования"
	}

	return models.Insight{
		Type:           "runway",
		Severity:       severity,
		Title:          fmt.Sprintf("Runway: %.1f месяцев", ctx.kpi.Runway),
		Description:    fmt.Sprintf("При текущих расходах денег хватит на %.1f месяцев.", ctx.kpi.Runway),
		Recommendation: recommendation,
	}, true
}

func liquidityInsight(ctx analysisContext) (models.Insight, bool) {
	switch {
	case ctx.kpi.LiquidityRatio < 1.5:
		return models.Insight{
			Type:           "liquidity",
			Severity:       models.SeverityWarning,
			Title:          "Низкая ликвидность",
			Description:    fmt.Sprintf("Коэффициент ликвидности %.1fx: риск кассового разрыва.", ctx.kpi.LiquidityRatio),
			Recommendation: "Сформируйте подушку ликвидности или откройте кредитную линию",
		}, true
	case ctx.kpi.LiquidityRatio > 2:
		return models.Insight{
			Type:           "liquidity",
			Severity:       models.SeverityInfo,
			Title:          "Высокая ликвидность",
			Description:    fmt.Sprintf("Коэффициент ликвидности %.1fx.", ctx.kpi.LiquidityRatio),
			Recommendation: "Свободные средства можно инвестировать в развитие",
		}, true
	default:
		return models.Insight{}, false
	}
}

func seasonalityInsight(ctx analysisContext) (models.Insight, bool) {
	if ctx.industry.Seasonality <= 0.3 {
		return models.Insight{}, false
	}

	return models.Insight{
		Type:           "seasonality",
		Severity:       models.SeverityInfo,
		Title:          "Высокая сезонность",
		Description:    fmt.Sprintf("Сезонность отрасли %d%%: выручка заметно колеблется в течение года.", percent(ctx.industry.Seasonality)),
		Recommendation: "Планируйте резервы на низкие периоды",
	}, true
}

func industryVolatilityInsight(ctx analysisContext) (models.Insight, bool) {
	if ctx.industry.Volatility <= 0.6 {
		return models.Insight{}, false
	}

	return models.Insight{
		Type:           "industry_volatility",
		Severity:       models.SeverityWarning,
		Title:          "Высокая волатильность отрасли",
		Description:    fmt.Sprintf("Волатильность отрасли %d%%.", percent(ctx.industry.Volatility)),
		Recommendation: "Диверсифицируйте источники дохода",
	}, true
}

func cashGapInsight(ctx analysisContext) (models.Insight, bool) {
	criticalDays := 0
	for _, forecast := range ctx.forecasts {
		if forecast.P5 < 0 {
			criticalDays++
		}
	}

	if criticalDays == 0 {
		return models.Insight{}, false
	}

	return models.Insight{
		Type:           "cash_gap",
		Severity:       models.SeverityCritical,
		Title:          "Прогнозируются кассовые разрывы",
		Description:    fmt.Sprintf("В пессимистичном сценарии %d дней с отрицательным потоком.", criticalDays),
		Recommendation: "Согласуйте резервное финансирование до наступления разрыва",
	}, true
}

func riskScoreInsight(ctx analysisContext) (models.Insight, bool) {
	if ctx.kpi.RiskScore <= 60 {
		return models.Insight{}, false
	}

	return models.Insight{
		Type:           "risk",
		Severity:       models.SeverityWarning,
		Title:          "Высокий общий риск",
		Description:    fmt.Sprintf("Интегральная оценка риска %d из 100.", ctx.kpi.RiskScore),
		Recommendation: "Высокий общий риск требует внимания",
	}, true
}

func cashFlowRecommendation(ctx analysisContext) (models.Recommendation, bool) {
	priority := models.PriorityMedium
	if ctx.kpi.CashFlow < 0 {
		priority = models.PriorityHigh
	}

	return models.Recommendation{
		Category:       "financing",
		Priority:       priority,
		Title:          "Оптимизация денежного потока",
		Description:    "Рассмотрите факторинг или кредитную линию для стабилизации денежного потока",
		ExpectedImpact: "+20% ликвидности",
		Timeframe:      "1-3 месяца",
	}, true
}

func financingRecommendation(ctx analysisContext) (models.Recommendation, bool) {
	if ctx.kpi.Runway >= 6 {
		return models.Recommendation{}, false
	}

	timeframe := "1-2 месяца"
	if ctx.kpi.Runway < 3 {
		timeframe = "Немедленно"
	}

	return models.Recommendation{
		Category:       "financing",
		Priority:       models.PriorityHigh,
		Title:          "Привлечение финансирования",
		Description:    fmt.Sprintf("Runway %.1f месяцев: нужны дополнительные средства.", ctx.kpi.Runway),
		ExpectedImpact: "Продление runway до безопасного уровня",
		Timeframe:      timeframe,
	}, true
}

func receivablesRecommendation(ctx analysisContext) (models.Recommendation, bool) {
	if ctx.industry.DSO <= 30 {
		return models.Recommendation{}, false
	}

	return models.Recommendation{
		Category:       "receivables",
		Priority:       models.PriorityMedium,
		Title:          "Ускорение инкассации",
		Description:    fmt.Sprintf("Средний срок оплаты в отрасли %d дней: оптимизируйте работу с дебиторской задолженностью.", ctx.industry.DSO),
		ExpectedImpact: "Сокращение DSO на 10-15 дней",
		Timeframe:      "2-4 месяца",
	}, true
}

func reserveFundRecommendation(ctx analysisContext) (models.Recommendation, bool) {
	if ctx.industry.Seasonality <= 0.5 {
		return models.Recommendation{}, false
	}

	return models.Recommendation{
		Category:       "reserves",
		Priority:       models.PriorityMedium,
		Title:          "Резервный фонд",
		Description:    "Создайте резервный фонд на низкий сезон",
		ExpectedImpact: "Покрытие 2-3 месяцев расходов в низкий сезон",
		Timeframe:      "3-6 месяцев",
	}, true
}

// summarizeForecast агрегирует медианную полосу прогноза за первые days
// дней: приток — сумма неотрицательных p50, отток — модуль отрицательных,
// уверенность — среднее дневных значений.
func summarizeForecast(forecasts []models.DailyForecast, days int) models.ForecastWindow {
	if days > len(forecasts) {
		days = len(forecasts)
	}
	if days == 0 {
		return models.ForecastWindow{}
	}

	var window models.ForecastWindow
	var confidenceSum float64

	for _, forecast := range forecasts[:days] {
		if forecast.P50 >= 0 {
			window.ExpectedInflow += forecast.P50
		} else {
			window.ExpectedOutflow += -forecast.P50
		}
		confidenceSum += forecast.Confidence
	}

	window.NetChange = window.ExpectedInflow - window.ExpectedOutflow
	window.Confidence = round2(confidenceSum / float64(days))
	return window
}

func formatMillions(v int64) string {
	return fmt.Sprintf("%.2f млн руб", float64(v)/1_000_000)
}

func percent(v float64) int {
	return int(v * 100)
}
