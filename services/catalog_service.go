package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"xposure-ticketing/models"
	"xposure-ticketing/repository"
	"xposure-ticketing/utils"
)

// CatalogService owns event definitions: create, read, update, delete,
// and the admin stats view. Slugs are derived from titles and must be
// unique across the catalog.
type CatalogService struct {
	events  *repository.EventRepository
	tickets *repository.TicketRepository
}

func NewCatalogService(events *repository.EventRepository, tickets *repository.TicketRepository) *CatalogService {
	return &CatalogService{events: events, tickets: tickets}
}

// EventInput is the organizer-supplied event definition.
type EventInput struct {
	Title           string
	Description     string
	Date            time.Time
	Price           decimal.Decimal
	Capacity        int
	LocationName    string
	LocationAddress string
	LocationMapsURL string
	ImageURL        string
	Published       bool
	Mode            models.PaymentMode
}

func (in *EventInput) validate() error {
	if in.Title == "" || in.LocationName == "" || in.LocationAddress == "" || in.ImageURL == "" {
		return fmt.Errorf("%w: missing required fields", models.ErrInvalidInput)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: event date is required", models.ErrInvalidInput)
	}
	if in.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be positive", models.ErrInvalidInput)
	}
	if !in.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", models.ErrInvalidInput)
	}
	return in.Mode.Validate()
}

func (s *CatalogService) Create(ctx context.Context, in EventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	slug := utils.Slugify(in.Title)
	if slug == "" {
		return nil, fmt.Errorf("%w: title yields an empty slug", models.ErrInvalidInput)
	}

	if _, err := s.events.FindBySlug(ctx, slug); err == nil {
		return nil, fmt.Errorf("%w: an event with this title already exists", models.ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	ev := &models.Event{
		ID:              uuid.NewString(),
		Slug:            slug,
		Title:           in.Title,
		Description:     in.Description,
		Date:            in.Date.UTC(),
		Price:           in.Price,
		Capacity:        in.Capacity,
		SoldCount:       0,
		LocationName:    in.LocationName,
		LocationAddress: in.LocationAddress,
		LocationMapsURL: in.LocationMapsURL,
		ImageURL:        in.ImageURL,
		Published:       in.Published,
		PaymentModeKind: in.Mode.Kind,
		PaymentLink:     in.Mode.PaymentLink,
		ExternalURL:     in.Mode.ExternalURL,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.events.Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.events.FindByID(ctx, id)
}

func (s *CatalogService) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return s.events.FindBySlug(ctx, slug)
}

func (s *CatalogService) List(ctx context.Context, publishedOnly bool) ([]models.Event, error) {
	return s.events.List(ctx, publishedOnly)
}

// Update edits an event. The slug is regenerated only when the title
// changed, re-checked for collisions excluding the event itself, and
// capacity can never drop below what is already sold.
func (s *CatalogService) Update(ctx context.Context, id string, in EventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	current, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Capacity < current.SoldCount {
		return nil, fmt.Errorf("%w: capacity cannot be reduced below %d tickets already sold",
			models.ErrInvalidInput, current.SoldCount)
	}

	slug := current.Slug
	if in.Title != current.Title {
		slug = utils.Slugify(in.Title)
		if existing, err := s.events.FindBySlug(ctx, slug); err == nil && existing.ID != id {
			return nil, fmt.Errorf("%w: an event with this title already exists", models.ErrConflict)
		} else if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}

	updated := *current
	updated.Slug = slug
	updated.Title = in.Title
	updated.Description = in.Description
	updated.Date = in.Date.UTC()
	updated.Price = in.Price
	updated.Capacity = in.Capacity
	updated.LocationName = in.LocationName
	updated.LocationAddress = in.LocationAddress
	updated.LocationMapsURL = in.LocationMapsURL
	updated.ImageURL = in.ImageURL
	updated.Published = in.Published
	updated.PaymentModeKind = in.Mode.Kind
	updated.PaymentLink = in.Mode.PaymentLink
	updated.ExternalURL = in.Mode.ExternalURL

	if err := s.events.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete refuses while any ticket references the event, regardless of
// payment status.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	return s.events.Delete(ctx, id)
}

func (s *CatalogService) Stats(ctx context.Context, id string) (*models.EventStats, error) {
	if _, err := s.events.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.tickets.Stats(ctx, id)
}
