package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/shopspring/decimal"

	"xposure-ticketing/models"
	"xposure-ticketing/services"
)

type EventHandler struct {
	catalog *services.CatalogService
}

func NewEventHandler(catalog *services.CatalogService) *EventHandler {
	return &EventHandler{catalog: catalog}
}

type eventRequest struct {
	Title           string    `json:"title" validate:"required"`
	Description     string    `json:"description"`
	Date            time.Time `json:"date" validate:"required"`
	Price           string    `json:"price" validate:"required"`
	Capacity        int       `json:"capacity" validate:"required,min=1"`
	LocationName    string    `json:"location_name" validate:"required"`
	LocationAddress string    `json:"location_address" validate:"required"`
	LocationMapsURL string    `json:"location_maps_url"`
	ImageURL        string    `json:"image_url" validate:"required"`
	Published       bool      `json:"published"`
	PaymentMode     string    `json:"payment_mode"`
	PaymentLink     string    `json:"payment_link"`
	ExternalURL     string    `json:"external_url"`
}

func (r *eventRequest) toInput() (services.EventInput, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return services.EventInput{}, models.ErrInvalidInput
	}

	kind := models.PaymentModeKind(r.PaymentMode)
	if kind == "" {
		kind = models.PaymentModeStandard
	}

	return services.EventInput{
		Title:           r.Title,
		Description:     r.Description,
		Date:            r.Date,
		Price:           price,
		Capacity:        r.Capacity,
		LocationName:    r.LocationName,
		LocationAddress: r.LocationAddress,
		LocationMapsURL: r.LocationMapsURL,
		ImageURL:        r.ImageURL,
		Published:       r.Published,
		Mode: models.PaymentMode{
			Kind:        kind,
			PaymentLink: r.PaymentLink,
			ExternalURL: r.ExternalURL,
		},
	}, nil
}

// ListPublic returns published events for the storefront.
func (h *EventHandler) ListPublic(c echo.Context) error {
	events, err := h.catalog.List(c.Request().Context(), true)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, events)
}

// GetBySlug returns one published event by its storefront slug.
func (h *EventHandler) GetBySlug(c echo.Context) error {
	ev, err := h.catalog.GetBySlug(c.Request().Context(), c.PathParam("slug"))
	if err != nil {
		return respondError(c, err)
	}
	if !ev.Published {
		return respondError(c, models.ErrNotFound)
	}
	return c.JSON(http.StatusOK, ev)
}

// ListAdmin returns every event, drafts included.
func (h *EventHandler) ListAdmin(c echo.Context) error {
	events, err := h.catalog.List(c.Request().Context(), false)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Get(c echo.Context) error {
	ev, err := h.catalog.Get(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *EventHandler) Create(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	in, err := req.toInput()
	if err != nil {
		return respondError(c, err)
	}

	ev, err := h.catalog.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, ev)
}

func (h *EventHandler) Update(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	in, err := req.toInput()
	if err != nil {
		return respondError(c, err)
	}

	ev, err := h.catalog.Update(c.Request().Context(), c.PathParam("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.catalog.Delete(c.Request().Context(), c.PathParam("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "event deleted"})
}

func (h *EventHandler) Stats(c echo.Context) error {
	stats, err := h.catalog.Stats(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
