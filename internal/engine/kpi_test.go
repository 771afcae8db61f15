package engine

import (
	"errors"
	"testing"
	"time"
)

// TestScoreFlatLedgerScenario проверяет опорный сценарий: 90 дней с доходом
// 100000 и расходом 80000 в день, конечный остаток 1.8 млн.
func TestScoreFlatLedgerScenario(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	ledger := flatLedger(90, 100_000, 80_000, end)

	kpi, err := Score(ledger, 90)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if kpi.CashFlow != 1_800_000 {
		t.Fatalf("expected cash flow 1800000, got %d", kpi.CashFlow)
	}
	// 7.2 млн расходов за три месяца: floor в 100k не срабатывает.
	if kpi.BurnRate != 2_400_000 {
		t.Fatalf("expected burn rate 2400000, got %d", kpi.BurnRate)
	}
	if kpi.Runway != 0.8 {
		t.Fatalf("expected runway 0.8, got %v", kpi.Runway)
	}
	if kpi.LiquidityRatio != kpi.Runway {
		t.Fatalf("expected liquidity ratio to mirror runway, got %v vs %v", kpi.LiquidityRatio, kpi.Runway)
	}
	// runway < 3 дает +40, ликвидность < 1 дает +30.
	if kpi.RiskScore < 70 {
		t.Fatalf("expected risk score >= 70, got %d", kpi.RiskScore)
	}
	if kpi.Revenue != 9_000_000 {
		t.Fatalf("expected revenue 9000000, got %d", kpi.Revenue)
	}
}

// TestScoreZeroExpenseFloor проверяет нижнюю границу знаменателя при
// леджере без расходов: исключений нет, ликвидность считается от 100k.
func TestScoreZeroExpenseFloor(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	ledger := flatLedger(30, 50_000, 0, end)

	kpi, err := Score(ledger, 90)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	balance := ledger[len(ledger)-1].Balance
	want := round1(float64(balance) / minMonthlyExpense)

	if kpi.LiquidityRatio != want {
		t.Fatalf("expected liquidity ratio %v, got %v", want, kpi.LiquidityRatio)
	}
	if kpi.BurnRate != 0 {
		t.Fatalf("expected zero burn rate, got %d", kpi.BurnRate)
	}
}

// TestScoreEmptyLedger проверяет, что пустой леджер дает нулевые метрики
// без ошибок и делений на ноль.
func TestScoreEmptyLedger(t *testing.T) {
	kpi, err := Score(nil, 90)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if kpi.CashFlow != 0 || kpi.Runway != 0 || kpi.LiquidityRatio != 0 {
		t.Fatalf("expected zero metrics, got %+v", kpi)
	}
	if kpi.RiskScore < 0 || kpi.RiskScore > 100 {
		t.Fatalf("risk score %d out of [0, 100]", kpi.RiskScore)
	}
}

// TestScoreRiskBounds проверяет границы риска на крайних входах.
func TestScoreRiskBounds(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	// Глубоко убыточный леджер: все слагаемые риска набираются разом.
	drained := flatLedger(90, 10_000, 900_000, end)
	kpi, err := Score(drained, 90)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if kpi.RiskScore != 100 {
		t.Fatalf("expected risk score capped at 100, got %d", kpi.RiskScore)
	}

	// Благополучный леджер: большой запас и положительный поток.
	healthy := flatLedger(90, 2_000_000, 100_000, end)
	kpi, err = Score(healthy, 90)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if kpi.RiskScore < 0 || kpi.RiskScore > 100 {
		t.Fatalf("risk score %d out of [0, 100]", kpi.RiskScore)
	}
}

// TestScoreInvalidWindow проверяет отказ на отрицательном окне.
func TestScoreInvalidWindow(t *testing.T) {
	if _, err := Score(nil, -1); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}
