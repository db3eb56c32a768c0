package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"xposure-ticketing/models"
	"xposure-ticketing/services"
)

type RaffleHandler struct {
	raffle *services.RaffleService
}

func NewRaffleHandler(raffle *services.RaffleService) *RaffleHandler {
	return &RaffleHandler{raffle: raffle}
}

type raffleRequest struct {
	EventID string `json:"event_id"`
	Mode    string `json:"mode" validate:"required"`
}

// Draw runs a raffle over paid tickets. An empty event_id spans the
// whole catalog.
func (h *RaffleHandler) Draw(c echo.Context) error {
	var req raffleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	result, err := h.raffle.Draw(c.Request().Context(), req.EventID, models.RaffleMode(req.Mode))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
