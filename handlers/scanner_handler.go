package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"xposure-ticketing/services"
)

type ScannerHandler struct {
	validation *services.ValidationService
}

func NewScannerHandler(validation *services.ValidationService) *ScannerHandler {
	return &ScannerHandler{validation: validation}
}

type validateRequest struct {
	Code string `json:"code" validate:"required"`
}

// Validate admits a ticket at the door. At most one scan per code ever
// succeeds.
func (h *ScannerHandler) Validate(c echo.Context) error {
	var req validateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	result, err := h.validation.Validate(c.Request().Context(), req.Code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
