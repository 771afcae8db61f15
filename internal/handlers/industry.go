package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/cfo-ai/backend/internal/auth"
	"example.com/cfo-ai/backend/internal/industry"
	"example.com/cfo-ai/backend/internal/models"
	"example.com/cfo-ai/backend/internal/repository"
)

type IndustryHandler struct {
	Users *repository.UserRepository
}

// NewIndustryHandler создает обработчик отраслевых профилей.
func NewIndustryHandler(users *repository.UserRepository) *IndustryHandler {
	return &IndustryHandler{Users: users}
}

type IndustryListResponse struct {
	Industries []models.IndustryPreset `json:"industries"`
}

type UpdateIndustryRequest struct {
	Industry string `json:"industry" validate:"required,max=50"`
}

// List возвращает доступные отраслевые профили.
func (h *IndustryHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, IndustryListResponse{Industries: industry.List()})
}

// Update меняет отрасль текущего пользователя.
func (h *IndustryHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateIndustryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	if _, found := industry.Preset(req.Industry); !found {
		return badRequest(c, "unknown industry")
	}

	user, err := h.Users.UpdateIndustry(c.Request().Context(), userID, req.Industry)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, UserResponse{
		User: AuthUser{ID: user.ID, Email: user.Email, Name: user.Name, Industry: user.Industry},
	})
}
