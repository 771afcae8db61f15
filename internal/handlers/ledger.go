package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/cfo-ai/backend/internal/auth"
	"example.com/cfo-ai/backend/internal/importer"
	"example.com/cfo-ai/backend/internal/models"
	"example.com/cfo-ai/backend/internal/notifications"
	"example.com/cfo-ai/backend/internal/repository"
)

type LedgerHandler struct {
	Ledger *repository.LedgerRepository
	Hub    *notifications.Hub
}

// NewLedgerHandler создает обработчик леджера.
func NewLedgerHandler(ledger *repository.LedgerRepository, hub *notifications.Hub) *LedgerHandler {
	return &LedgerHandler{Ledger: ledger, Hub: hub}
}

type ImportResponse struct {
	Imported       int       `json:"imported"`
	OpeningBalance int64     `json:"opening_balance"`
	ClosingBalance int64     `json:"closing_balance"`
	FirstDate      time.Time `json:"first_date"`
	LastDate       time.Time `json:"last_date"`
}

type LedgerResponse struct {
	Transactions []models.Transaction `json:"transactions"`
}

// Import заменяет леджер пользователя загруженной выпиской. Формат выбирается
// по Content-Type: application/json или CSV. Опциональный параметр
// opening_balance задает остаток до первой строки выписки.
func (h *LedgerHandler) Import(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	openingBalance := int64(0)
	if raw := c.QueryParam("opening_balance"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid opening_balance")
		}
		openingBalance = parsed
	}

	var (
		ledger []models.Transaction
		err    error
	)

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
		ledger, err = importer.ParseJSON(c.Request().Body, openingBalance)
	} else {
		ledger, err = importer.ParseCSV(c.Request().Body, openingBalance)
	}
	if err != nil {
		if errors.Is(err, importer.ErrEmptyStatement) || errors.Is(err, importer.ErrBadRecord) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}

	if err := h.Ledger.Replace(c.Request().Context(), userID, ledger); err != nil {
		return serverError(c)
	}

	h.Hub.Publish(userID, notifications.Event{
		Type: notifications.EventLedgerImported,
		Data: map[string]int{"transactions": len(ledger)},
	})

	return c.JSON(http.StatusCreated, ImportResponse{
		Imported:       len(ledger),
		OpeningBalance: openingBalance,
		ClosingBalance: ledger[len(ledger)-1].Balance,
		FirstDate:      ledger[0].Date,
		LastDate:       ledger[len(ledger)-1].Date,
	})
}

// List возвращает леджер пользователя в хронологическом порядке.
func (h *LedgerHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ledger, err := h.Ledger.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	if ledger == nil {
		ledger = []models.Transaction{}
	}
	return c.JSON(http.StatusOK, LedgerResponse{Transactions: ledger})
}
