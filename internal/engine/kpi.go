package engine

import (
	"errors"
	"math"

	"example.com/cfo-ai/backend/internal/models"
)

// minMonthlyExpense — нижняя граница среднемесячных расходов. Защищает
// runway и коэффициент ликвидности от деления на ноль при леджере без
// расходов.
const minMonthlyExpense = 100_000

// Score считает KPI по хвостовому окну леджера. Пустой леджер не является
// ошибкой: итоги окна считаются нулевыми, а нижние границы знаменателей
// гарантируют конечные значения. windowDays == 0 — окно по умолчанию.
func Score(ledger []models.Transaction, windowDays int) (models.KPIMetrics, error) {
	if windowDays == 0 {
		windowDays = DefaultWindowDays
	}
	if windowDays < 0 {
		return models.KPIMetrics{}, ErrInvalidParameter
	}

	var totalIncome, totalExpense int64
	aggregate, err := Aggregate(ledger, windowDays)
	switch {
	case err == nil:
		totalIncome = aggregate.TotalIncome
		totalExpense = aggregate.TotalExpense
	case errors.Is(err, ErrEmptyLedger):
		// Окно пустое — метрики считаются от нулевых итогов.
	default:
		return models.KPIMetrics{}, err
	}

	netCashFlow := totalIncome - totalExpense

	monthsInWindow := float64(windowDays) / 30.0
	avgMonthlyExpense := float64(totalExpense) / monthsInWindow
	floored := math.Max(avgMonthlyExpense, minMonthlyExpense)

	var currentBalance int64
	if len(ledger) > 0 {
		currentBalance = ledger[len(ledger)-1].Balance
	}

	runway := float64(currentBalance) / floored

	// Коэффициент ликвидности намеренно считается по той же формуле, что и
	// runway — так делает исходная модель, расхождение зафиксировано и не
	// «чинится» без решения по продукту.
	liquidityRatio := float64(currentBalance) / floored

	riskScore := 0
	switch {
	case runway < 3:
		riskScore += 40
	case runway < 6:
		riskScore += 20
	}
	switch {
	case netCashFlow < 0:
		riskScore += 30
	case float64(netCashFlow) < avgMonthlyExpense*0.2:
		riskScore += 15
	}
	switch {
	case liquidityRatio < 1:
		riskScore += 30
	case liquidityRatio < 2:
		riskScore += 10
	}
	if riskScore > 100 {
		riskScore = 100
	}

	return models.KPIMetrics{
		CashFlow:       netCashFlow,
		BurnRate:       roundMoney(avgMonthlyExpense),
		Runway:         round1(runway),
		LiquidityRatio: round1(liquidityRatio),
		RiskScore:      riskScore,
		Revenue:        totalIncome,
	}, nil
}
