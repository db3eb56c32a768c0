package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"xposure-ticketing/services"
)

type CheckoutHandler struct {
	checkout *services.CheckoutService
}

func NewCheckoutHandler(checkout *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

type checkoutRequest struct {
	EventID  string `json:"event_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
}

// CreateSession starts a checkout and returns the payment redirect.
func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	result, err := h.checkout.Initiate(c.Request().Context(), services.CheckoutRequest{
		EventID:  req.EventID,
		Quantity: req.Quantity,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
