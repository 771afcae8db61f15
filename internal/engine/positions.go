package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"example.com/cfo-ai/backend/internal/models"
)

const (
	receivableThreshold = 500_000
	payableThreshold    = 300_000
	loanThreshold       = 1_000_000

	loanTermMonths = 24
)

var clientNames = []string{
	`ООО "Торговый Дом"`,
	`ИП Иванов А.С.`,
	`ООО "Розничные Сети"`,
	`ПАО "Корпорация"`,
	`ИП Петров В.М.`,
	`ООО "Партнер Плюс"`,
}

var supplierNames = map[string][]string{
	"Материалы":      {`ООО "СтройМатериалы"`, `ИП Сидоров`, `ООО "МетТорг"`},
	"Закупка товара": {`ООО "Оптовик"`, `ИП Поставщик`, `ООО "ТоварыПлюс"`},
	"Оборудование":   {`ООО "ТехПром"`, `ИП Техника`, `ООО "ПромОборудование"`},
	"Лизинг":         {`АО "Лизинговая компания"`, `ООО "АвтоЛизинг"`},
	"Аренда":         {`ООО "Недвижимость"`, `ИП Арендодатель`},
}

var lenderNames = []string{"ПАО Сбербанк", "АО Альфа-Банк"}

// SynthesizePositions выводит дебиторку/кредиторку и займы из крупных
// транзакций. Дебиторка и кредиторка строятся по хвостовым ~90 записям,
// займы — по всему леджеру. now — опорное время для расчета выплаченной
// части займа; при одинаковом леджере, времени и зерне rng результат
// воспроизводится полностью. Слой отображения, не источник истины по
// обязательствам.
func SynthesizePositions(ledger []models.Transaction, now time.Time, rng *rand.Rand) ([]models.ARAP, []models.Loan) {
	recent := ledger
	if len(recent) > trailingEntries {
		recent = recent[len(recent)-trailingEntries:]
	}

	arap := make([]models.ARAP, 0)
	arCounter, apCounter := 1, 1

	for _, tx := range recent {
		switch {
		case tx.Type == models.TransactionIncome && tx.Amount > receivableThreshold:
			paid := tx.Amount
			if rng.Float64() <= 0.3 {
				paid = roundMoney(float64(tx.Amount) * 0.7)
			}

			status := models.ARAPStatusOverdue
			if paid >= tx.Amount {
				status = models.ARAPStatusPaid
			}

			arap = append(arap, models.ARAP{
				ID:           fmt.Sprintf("ar-%d", arCounter),
				Counterparty: clientNames[rng.Intn(len(clientNames))],
				Amount:       tx.Amount,
				PaidAmount:   paid,
				DueDate:      tx.Date.AddDate(0, 0, 30),
				Type:         models.ARAPReceivable,
				Status:       status,
			})
			arCounter++

		case tx.Type == models.TransactionExpense && -tx.Amount > payableThreshold:
			amount := -tx.Amount
			paid := amount
			if rng.Float64() <= 0.2 {
				paid = roundMoney(float64(amount) * 0.6)
			}

			status := models.ARAPStatusPending
			if paid >= amount {
				status = models.ARAPStatusPaid
			}

			arap = append(arap, models.ARAP{
				ID:           fmt.Sprintf("ap-%d", apCounter),
				Counterparty: supplierName(tx.Category, rng),
				Amount:       amount,
				PaidAmount:   paid,
				DueDate:      tx.Date.AddDate(0, 0, 20),
				Type:         models.ARAPPayable,
				Status:       status,
			})
			apCounter++
		}
	}

	return arap, synthesizeLoans(ledger, now, rng)
}

// synthesizeLoans превращает крупные разовые расходы в займы: считается,
// что займ взят за неделю до покупки на 24 месяца равными платежами.
func synthesizeLoans(ledger []models.Transaction, now time.Time, rng *rand.Rand) []models.Loan {
	loans := make([]models.Loan, 0)

	for _, tx := range ledger {
		if tx.Type != models.TransactionExpense || -tx.Amount <= loanThreshold {
			continue
		}

		amount := -tx.Amount
		startDate := tx.Date.AddDate(0, 0, -7)
		maturityDate := startDate.AddDate(0, loanTermMonths, 0)

		monthsElapsed := int(now.Sub(startDate).Hours() / (24 * 30))
		if monthsElapsed > loanTermMonths {
			monthsElapsed = loanTermMonths
		}
		if monthsElapsed < 0 {
			monthsElapsed = 0
		}

		monthlyPayment := float64(amount) / loanTermMonths
		remaining := math.Max(0, float64(amount)-monthlyPayment*float64(monthsElapsed))

		loans = append(loans, models.Loan{
			ID:               fmt.Sprintf("loan-%d", len(loans)+1),
			Lender:           lenderNames[len(loans)%len(lenderNames)],
			Amount:           amount,
			InterestRate:     round1(12 + rng.Float64()*4),
			StartDate:        startDate,
			MaturityDate:     maturityDate,
			MonthlyPayment:   roundMoney(monthlyPayment),
			RemainingBalance: roundMoney(remaining),
			Purpose:          tx.Description,
		})
	}

	return loans
}

func supplierName(category string, rng *rand.Rand) string {
	names, ok := supplierNames[category]
	if !ok {
		return `ООО "Поставщик"`
	}
	return names[rng.Intn(len(names))]
}
