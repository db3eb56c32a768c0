package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/sirupsen/logrus"

	"xposure-ticketing/models"
)

// respondError maps domain errors onto HTTP. Anything unrecognized is
// a 500 with a generic body; the detail goes to the log, not the
// client.
func respondError(c echo.Context, err error) error {
	var scanned *models.AlreadyScannedError
	if errors.As(err, &scanned) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": scanned.Error()})
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, models.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidSignature):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid signature"})
	case errors.Is(err, models.ErrConflict):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	logrus.WithError(err).Error("request failed")
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
