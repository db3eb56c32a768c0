package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/sirupsen/logrus"

	"xposure-ticketing/models"
	"xposure-ticketing/monitoring"
	"xposure-ticketing/repository"
	"xposure-ticketing/security"
)

type AuthHandler struct {
	admins   *repository.AdminRepository
	sessions *security.SessionManager
	limiter  security.Limiter
}

func NewAuthHandler(admins *repository.AdminRepository, sessions *security.SessionManager, limiter security.Limiter) *AuthHandler {
	return &AuthHandler{admins: admins, sessions: sessions, limiter: limiter}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates the admin and sets the session cookie. Attempts
// are throttled per client IP; the counter clears on success.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	ip := c.RealIP()

	allowed, _, err := h.limiter.Allow(ctx, ip)
	if err != nil {
		return respondError(c, err)
	}
	if !allowed {
		monitoring.LoginAttempts.WithLabelValues("throttled").Inc()
		return c.JSON(http.StatusTooManyRequests, map[string]string{
			"error": "too many login attempts, try again later",
		})
	}

	admin, err := h.admins.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			monitoring.LoginAttempts.WithLabelValues("failed").Inc()
			return respondError(c, models.ErrUnauthenticated)
		}
		return respondError(c, err)
	}

	if !security.VerifyCredentials(admin.PasswordHash, req.Password) {
		monitoring.LoginAttempts.WithLabelValues("failed").Inc()
		logrus.WithField("ip", ip).Warn("failed admin login")
		return respondError(c, models.ErrUnauthenticated)
	}

	if err := h.limiter.Reset(ctx, ip); err != nil {
		logrus.WithError(err).Warn("could not reset login limiter")
	}

	token, err := h.sessions.CreateToken(admin.Username)
	if err != nil {
		return respondError(c, err)
	}
	h.sessions.SetSessionCookie(c, token)

	monitoring.LoginAttempts.WithLabelValues("success").Inc()
	logrus.WithField("username", admin.Username).Info("admin logged in")

	return c.JSON(http.StatusOK, map[string]string{"username": admin.Username})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.ClearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}
