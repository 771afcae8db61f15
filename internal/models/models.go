package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

type ARAPType string

type ARAPStatus string

type Severity string

type Priority string

type HealthStatus string

type RiskLevel string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"

	ARAPReceivable ARAPType = "receivable"
	ARAPPayable    ARAPType = "payable"

	ARAPStatusOpen    ARAPStatus = "open"
	ARAPStatusPending ARAPStatus = "pending"
	ARAPStatusOverdue ARAPStatus = "overdue"
	ARAPStatusPaid    ARAPStatus = "paid"

	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"

	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	HealthGood     HealthStatus = "good"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"

	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Transaction — одна строка банковской выписки. Суммы в целых единицах
// валюты, знак задает направление: положительная — доход, отрицательная —
// расход. Balance — накопительный остаток после операции. Леджер
// неизменяем: импорт заменяет его целиком, правок на месте нет.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	Date        time.Time       `json:"date"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        TransactionType `json:"type"`
	Balance     int64           `json:"balance"`
}

// PeriodAggregate — суммы по скользящему окну леджера. Производное
// значение, пересчитывается по запросу и отдельно не хранится.
type PeriodAggregate struct {
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
	TotalIncome  int64     `json:"total_income"`
	TotalExpense int64     `json:"total_expense"`
	NetFlow      int64     `json:"net_flow"`
}

// DailyForecast — трехточечное распределение прогноза на один день.
// Инвариант: P5 <= P50 <= P95, Confidence в диапазоне [0.4, 0.99].
type DailyForecast struct {
	Date       time.Time `json:"date"`
	P5         int64     `json:"p5"`
	P50        int64     `json:"p50"`
	P95        int64     `json:"p95"`
	Confidence float64   `json:"confidence"`
}

// KPIMetrics — скалярные показатели ликвидности и риска. Денежные поля в
// целых единицах валюты, коэффициенты округлены до одного знака.
type KPIMetrics struct {
	CashFlow       int64   `json:"cash_flow"`
	BurnRate       int64   `json:"burn_rate"`
	Runway         float64 `json:"runway"`
	LiquidityRatio float64 `json:"liquidity_ratio"`
	RiskScore      int     `json:"risk_score"`
	Revenue        int64   `json:"revenue"`
	DSO            int     `json:"dso,omitempty"`
	DPO            int     `json:"dpo,omitempty"`
	DIO            int     `json:"dio,omitempty"`
}

// ARAP — синтезированная дебиторская или кредиторская позиция.
// Приближение для отображения, не бухгалтерский учет: набор генерируется
// заново при каждом анализе и после создания не мутирует.
type ARAP struct {
	ID           string     `json:"id"`
	Counterparty string     `json:"counterparty"`
	Amount       int64      `json:"amount"`
	PaidAmount   int64      `json:"paid_amount"`
	DueDate      time.Time  `json:"due_date"`
	Type         ARAPType   `json:"type"`
	Status       ARAPStatus `json:"status"`
}

// Loan — синтезированный займ под крупный разовый расход.
type Loan struct {
	ID               string    `json:"id"`
	Lender           string    `json:"lender"`
	Amount           int64     `json:"amount"`
	InterestRate     float64   `json:"interest_rate"`
	StartDate        time.Time `json:"start_date"`
	MaturityDate     time.Time `json:"maturity_date"`
	MonthlyPayment   int64     `json:"monthly_payment"`
	RemainingBalance int64     `json:"remaining_balance"`
	Purpose          string    `json:"purpose"`
}

type Insight struct {
	Type           string   `json:"type"`
	Severity       Severity `json:"severity"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
}

type Recommendation struct {
	Category       string   `json:"category"`
	Priority       Priority `json:"priority"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	ExpectedImpact string   `json:"expected_impact"`
	Timeframe      string   `json:"timeframe"`
}

// ForecastWindow — агрегат прогноза за окно в N дней.
type ForecastWindow struct {
	ExpectedInflow  int64   `json:"expected_inflow"`
	ExpectedOutflow int64   `json:"expected_outflow"`
	NetChange       int64   `json:"net_change"`
	Confidence      float64 `json:"confidence"`
}

type ForecastSummary struct {
	Next30Days ForecastWindow `json:"next_30_days"`
	Next90Days ForecastWindow `json:"next_90_days"`
}

// AIAnalysis — итог генератора инсайтов: статусы, упорядоченные инсайты и
// рекомендации, сводка прогноза.
type AIAnalysis struct {
	CashFlowHealth  HealthStatus     `json:"cash_flow_health"`
	LiquidityStatus HealthStatus     `json:"liquidity_status"`
	RiskLevel       RiskLevel        `json:"risk_level"`
	Insights        []Insight        `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
	ForecastSummary ForecastSummary  `json:"forecast_summary"`
}

// IndustryPreset — отраслевые параметры прогноза и платежных циклов.
type IndustryPreset struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Seasonality float64 `json:"seasonality"`
	Volatility  float64 `json:"volatility"`
	DSO         int     `json:"dso"`
	DPO         int     `json:"dpo"`
	DIO         int     `json:"dio"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	Industry     string    `json:"industry"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ForecastSnapshot — ночной срез прогноза, сохраняемый планировщиком.
// Строка создается один раз и не обновляется.
type ForecastSnapshot struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	HorizonDays int             `json:"horizon_days"`
	Forecasts   []DailyForecast `json:"forecasts"`
	CreatedAt   time.Time       `json:"created_at"`
}
