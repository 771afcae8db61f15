package engine

import (
	"fmt"
	"time"

	"example.com/cfo-ai/backend/internal/models"
)

// DefaultWindowDays — окно агрегации по умолчанию, три месяца.
const DefaultWindowDays = 90

// Aggregate суммирует хвостовое окно леджера в итоги периода. Опорная дата —
// дата последней записи леджера, поэтому результат воспроизводим для
// неизменного леджера. windowDays == 0 трактуется как DefaultWindowDays.
func Aggregate(ledger []models.Transaction, windowDays int) (models.PeriodAggregate, error) {
	if len(ledger) == 0 {
		return models.PeriodAggregate{}, ErrEmptyLedger
	}

	return AggregateFrom(ledger, windowDays, ledger[len(ledger)-1].Date)
}

// AggregateFrom суммирует окно относительно явно закрепленной опорной даты.
// В окно входят записи с датой в [ref-windowDays, ref].
func AggregateFrom(ledger []models.Transaction, windowDays int, ref time.Time) (models.PeriodAggregate, error) {
	if windowDays == 0 {
		windowDays = DefaultWindowDays
	}
	if windowDays < 0 {
		return models.PeriodAggregate{}, fmt.Errorf("%w: windowDays must be positive, got %d", ErrInvalidParameter, windowDays)
	}

	windowStart := ref.AddDate(0, 0, -windowDays)

	aggregate := models.PeriodAggregate{
		WindowStart: windowStart,
		WindowEnd:   ref,
	}

	matched := 0
	for _, tx := range ledger {
		if tx.Date.Before(windowStart) || tx.Date.After(ref) {
			continue
		}

		matched++
		if tx.Amount >= 0 {
			aggregate.TotalIncome += tx.Amount
		} else {
			aggregate.TotalExpense += -tx.Amount
		}
	}

	if matched == 0 {
		return models.PeriodAggregate{}, ErrEmptyLedger
	}

	aggregate.NetFlow = aggregate.TotalIncome - aggregate.TotalExpense
	return aggregate, nil
}
