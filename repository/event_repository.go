package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"

	"xposure-ticketing/models"
)

type EventRepository struct {
	db *dbx.DB
}

func NewEventRepository(db *dbx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, ev *models.Event) error {
	_, err := r.db.Insert("events", dbx.Params{
		"id":                ev.ID,
		"slug":              ev.Slug,
		"title":             ev.Title,
		"description":       ev.Description,
		"date":              ev.Date,
		"price":             ev.Price,
		"capacity":          ev.Capacity,
		"sold_count":        ev.SoldCount,
		"location_name":     ev.LocationName,
		"location_address":  ev.LocationAddress,
		"location_maps_url": ev.LocationMapsURL,
		"image_url":         ev.ImageURL,
		"published":         ev.Published,
		"payment_mode":      ev.PaymentModeKind,
		"payment_link":      ev.PaymentLink,
		"external_url":      ev.ExternalURL,
		"created_at":        ev.CreatedAt,
	}).WithContext(ctx).Execute()
	if err != nil {
		// The unique slug index is the backstop for the pre-insert
		// collision check racing a concurrent create.
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var ev models.Event
	err := r.db.NewQuery(`SELECT * FROM events WHERE id={:id}`).
		Bind(dbx.Params{"id": id}).
		WithContext(ctx).
		One(&ev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &ev, nil
}

func (r *EventRepository) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	var ev models.Event
	err := r.db.NewQuery(`SELECT * FROM events WHERE slug={:slug}`).
		Bind(dbx.Params{"slug": slug}).
		WithContext(ctx).
		One(&ev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event by slug: %w", err)
	}
	return &ev, nil
}

// List returns all events, newest first. publishedOnly restricts the
// public catalog view.
func (r *EventRepository) List(ctx context.Context, publishedOnly bool) ([]models.Event, error) {
	query := `SELECT * FROM events ORDER BY date DESC`
	if publishedOnly {
		query = `SELECT * FROM events WHERE published={:pub} ORDER BY date DESC`
	}

	var events []models.Event
	err := r.db.NewQuery(query).
		Bind(dbx.Params{"pub": true}).
		WithContext(ctx).
		All(&events)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Update writes all editable fields. The capacity guard is part of the
// WHERE clause so a concurrent confirmation cannot slip sold_count
// above a reduced capacity between a read and this write.
func (r *EventRepository) Update(ctx context.Context, ev *models.Event) error {
	res, err := r.db.NewQuery(`
		UPDATE events
		SET slug={:slug}, title={:title}, description={:description},
			date={:date}, price={:price}, capacity={:capacity},
			location_name={:loc_name}, location_address={:loc_addr},
			location_maps_url={:loc_maps}, image_url={:image},
			published={:published}, payment_mode={:mode},
			payment_link={:payment_link}, external_url={:external_url}
		WHERE id={:id} AND {:capacity} >= sold_count
	`).Bind(dbx.Params{
		"id":           ev.ID,
		"slug":         ev.Slug,
		"title":        ev.Title,
		"description":  ev.Description,
		"date":         ev.Date,
		"price":        ev.Price,
		"capacity":     ev.Capacity,
		"loc_name":     ev.LocationName,
		"loc_addr":     ev.LocationAddress,
		"loc_maps":     ev.LocationMapsURL,
		"image":        ev.ImageURL,
		"published":    ev.Published,
		"mode":         ev.PaymentModeKind,
		"payment_link": ev.PaymentLink,
		"external_url": ev.ExternalURL,
	}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if rows == 0 {
		if _, err := r.FindByID(ctx, ev.ID); errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return fmt.Errorf("%w: capacity cannot be reduced below tickets already sold", models.ErrInvalidInput)
	}
	return nil
}

// Delete removes an event only while no ticket references it, in a
// single statement so a checkout racing the delete cannot orphan a
// ticket.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewQuery(`
		DELETE FROM events
		WHERE id={:id}
		AND NOT EXISTS (SELECT 1 FROM tickets t WHERE t.event_id={:id})
	`).Bind(dbx.Params{"id": id}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if rows == 0 {
		if _, err := r.FindByID(ctx, id); errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return fmt.Errorf("%w: cannot delete event with tickets", models.ErrConflict)
	}
	return nil
}

// CountTickets reports how many tickets reference the event,
// regardless of payment status.
func (r *EventRepository) CountTickets(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.NewQuery(`SELECT COUNT(*) FROM tickets WHERE event_id={:id}`).
		Bind(dbx.Params{"id": id}).
		WithContext(ctx).
		Row(&count)
	if err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return count, nil
}
