package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v5"

	"xposure-ticketing/services"
)

type WebhookHandler struct {
	confirmation *services.ConfirmationService
}

func NewWebhookHandler(confirmation *services.ConfirmationService) *WebhookHandler {
	return &WebhookHandler{confirmation: confirmation}
}

// HandleStripe receives provider callbacks. The raw body is what the
// signature covers, so it must be read before any binding touches it.
func (h *WebhookHandler) HandleStripe(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable payload"})
	}

	signature := c.Request().Header.Get("Stripe-Signature")

	if err := h.confirmation.HandleNotification(c.Request().Context(), payload, signature); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
