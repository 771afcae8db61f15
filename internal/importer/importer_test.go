package importer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"example.com/cfo-ai/backend/internal/models"
)

// TestParseCSV проверяет разбор выписки с заголовком, сортировку по дате и
// пересчет накопительного остатка.
func TestParseCSV(t *testing.T) {
	statement := strings.Join([]string{
		"date,amount,description,category",
		"2025-03-03,-80000,Аренда офиса,Аренда",
		"2025-03-01,150000,Оплата по договору,Продажи",
		"02.03.2025,-20000,Канцелярия,Офис",
	}, "\n")

	ledger, err := ParseCSV(strings.NewReader(statement), 500_000)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(ledger) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(ledger))
	}

	// Строки отсортированы по дате независимо от порядка в файле.
	if !ledger[0].Date.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected first entry on March 1, got %v", ledger[0].Date)
	}
	if ledger[1].Description != "Канцелярия" {
		t.Fatalf("expected dotted date format to parse, got %q", ledger[1].Description)
	}

	if ledger[0].Type != models.TransactionIncome || ledger[2].Type != models.TransactionExpense {
		t.Fatalf("expected type by sign, got %s / %s", ledger[0].Type, ledger[2].Type)
	}

	// 500000 +150000 -20000 -80000.
	wantBalances := []int64{650_000, 630_000, 550_000}
	for i, want := range wantBalances {
		if ledger[i].Balance != want {
			t.Fatalf("expected balance %d at %d, got %d", want, i, ledger[i].Balance)
		}
	}
}

// TestParseCSVAmountFormats проверяет суммы с пробелами и запятой.
func TestParseCSVAmountFormats(t *testing.T) {
	statement := "2025-03-01,\"150 000,50\",Оплата,Продажи\n"

	ledger, err := ParseCSV(strings.NewReader(statement), 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Копейки округляются до целого рубля.
	if ledger[0].Amount != 150_001 {
		t.Fatalf("expected amount 150001, got %d", ledger[0].Amount)
	}
}

// TestParseCSVBadRecord проверяет ошибки формата.
func TestParseCSVBadRecord(t *testing.T) {
	cases := []string{
		"not-a-date,100,x,y\nalso-bad,100,x,y",
		"2025-03-01,not-a-number,x,y",
		"2025-03-01,100,x",
	}

	for _, statement := range cases {
		if _, err := ParseCSV(strings.NewReader(statement), 0); !errors.Is(err, ErrBadRecord) {
			t.Fatalf("expected ErrBadRecord for %q, got %v", statement, err)
		}
	}
}

// TestParseCSVEmpty проверяет отказ на пустой выписке.
func TestParseCSVEmpty(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("date,amount,description,category\n"), 0); !errors.Is(err, ErrEmptyStatement) {
		t.Fatalf("expected ErrEmptyStatement, got %v", err)
	}
}

// TestParseJSON проверяет разбор JSON-массива, включая суммы строками.
func TestParseJSON(t *testing.T) {
	statement := `[
		{"date": "2025-03-02", "amount": -30000, "description": "Закупка", "category": "Материалы"},
		{"date": "2025-03-01", "amount": "100000", "description": "Аванс", "category": "Продажи"}
	]`

	ledger, err := ParseJSON(strings.NewReader(statement), 10_000)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(ledger) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(ledger))
	}
	if ledger[0].Amount != 100_000 {
		t.Fatalf("expected sorted ledger starting with income, got %d", ledger[0].Amount)
	}
	if ledger[1].Balance != 80_000 {
		t.Fatalf("expected closing balance 80000, got %d", ledger[1].Balance)
	}
}

// TestParseJSONUnknownField проверяет отказ на неизвестных полях.
func TestParseJSONUnknownField(t *testing.T) {
	statement := `[{"date": "2025-03-01", "amount": 1000, "description": "x", "category": "y", "extra": true}]`

	if _, err := ParseJSON(strings.NewReader(statement), 0); !errors.Is(err, ErrBadRecord) {
		t.Fatalf("expected ErrBadRecord, got %v", err)
	}
}
