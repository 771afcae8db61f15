// Пакет importer разбирает банковские выписки в формате CSV и JSON и
// превращает их в леджер транзакций с накопительным остатком.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/cfo-ai/backend/internal/models"
)

var (
	ErrEmptyStatement = errors.New("statement is empty")
	ErrBadRecord      = errors.New("bad statement record")
)

// Банки выгружают даты по-разному, поддерживаются оба частых формата.
var dateLayouts = []string{"2006-01-02", "02.01.2006"}

type jsonRecord struct {
	Date        string      `json:"date"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
}

// ParseCSV разбирает выписку формата date,amount,description,category.
// Строка заголовка опциональна. Возвращаемый леджер отсортирован по дате,
// остаток пересчитан от openingBalance.
func ParseCSV(r io.Reader, openingBalance int64) ([]models.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true

	var ledger []models.Transaction
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
		}

		line++
		if line == 1 && isHeader(record) {
			continue
		}

		date, err := parseDate(record[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadRecord, line, err)
		}
		amount, err := parseAmount(record[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadRecord, line, err)
		}

		ledger = append(ledger, newEntry(date, amount, record[2], record[3]))
	}

	return finalize(ledger, openingBalance)
}

// ParseJSON разбирает выписку в виде JSON-массива записей.
func ParseJSON(r io.Reader, openingBalance int64) ([]models.Transaction, error) {
	var records []jsonRecord

	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}

	var ledger []models.Transaction
	for i, record := range records {
		date, err := parseDate(record.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrBadRecord, i, err)
		}
		amount, err := parseAmount(record.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrBadRecord, i, err)
		}

		ledger = append(ledger, newEntry(date, amount, record.Description, record.Category))
	}

	return finalize(ledger, openingBalance)
}

func newEntry(date time.Time, amount int64, description, category string) models.Transaction {
	txType := models.TransactionIncome
	if amount < 0 {
		txType = models.TransactionExpense
	}

	return models.Transaction{
		ID:          uuid.New(),
		Date:        date,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		Type:        txType,
	}
}

// finalize сортирует леджер по дате и пересчитывает накопительный остаток.
// Остаток из выписки не переносится: после сортировки он гарантированно
// согласован только при пересчете.
func finalize(ledger []models.Transaction, openingBalance int64) ([]models.Transaction, error) {
	if len(ledger) == 0 {
		return nil, ErrEmptyStatement
	}

	sort.SliceStable(ledger, func(i, j int) bool {
		return ledger[i].Date.Before(ledger[j].Date)
	})

	balance := openingBalance
	for i := range ledger {
		balance += ledger[i].Amount
		ledger[i].Balance = balance
	}

	return ledger, nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, value); err == nil {
			return date.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date %q", value)
}

// parseAmount принимает суммы в человеческом написании: пробелы-разделители
// тысяч, запятая вместо точки. Копейки округляются до целых рублей.
func parseAmount(value string) (int64, error) {
	normalized := strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(strings.TrimSpace(value))
	if normalized == "" {
		return 0, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, fmt.Errorf("unsupported amount %q", value)
	}

	return amount.Round(0).IntPart(), nil
}

func isHeader(record []string) bool {
	_, err := parseDate(record[0])
	return err != nil
}
