package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentModeKind selects how buyers pay for an event.
type PaymentModeKind string

const (
	PaymentModeStandard PaymentModeKind = "standard" // hosted checkout session
	PaymentModeExternal PaymentModeKind = "external" // registration handled on an external page
)

// PaymentMode is a tagged variant: standard events carry a payment
// link, external events carry the registration URL. The two are
// mutually exclusive.
type PaymentMode struct {
	Kind        PaymentModeKind `json:"kind"`
	PaymentLink string          `json:"payment_link,omitempty"`
	ExternalURL string          `json:"external_url,omitempty"`
}

func (m PaymentMode) Validate() error {
	switch m.Kind {
	case PaymentModeStandard:
		if m.PaymentLink == "" {
			return fmt.Errorf("%w: payment link is required for standard events", ErrInvalidInput)
		}
		if m.ExternalURL != "" {
			return fmt.Errorf("%w: external URL is not allowed for standard events", ErrInvalidInput)
		}
	case PaymentModeExternal:
		if m.ExternalURL == "" {
			return fmt.Errorf("%w: external URL is required for external events", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown payment mode %q", ErrInvalidInput, m.Kind)
	}
	return nil
}

type Event struct {
	ID              string          `db:"id" json:"id"`
	Slug            string          `db:"slug" json:"slug"`
	Title           string          `db:"title" json:"title"`
	Description     string          `db:"description" json:"description"`
	Date            time.Time       `db:"date" json:"date"`
	Price           decimal.Decimal `db:"price" json:"price"`
	Capacity        int             `db:"capacity" json:"capacity"`
	SoldCount       int             `db:"sold_count" json:"sold_count"`
	LocationName    string          `db:"location_name" json:"location_name"`
	LocationAddress string          `db:"location_address" json:"location_address"`
	LocationMapsURL string          `db:"location_maps_url" json:"location_maps_url,omitempty"`
	ImageURL        string          `db:"image_url" json:"image_url"`
	Published       bool            `db:"published" json:"published"`
	PaymentModeKind PaymentModeKind `db:"payment_mode" json:"payment_mode"`
	PaymentLink     string          `db:"payment_link" json:"payment_link,omitempty"`
	ExternalURL     string          `db:"external_url" json:"external_url,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// PaymentMode reassembles the stored columns into the variant.
func (e *Event) PaymentMode() PaymentMode {
	return PaymentMode{
		Kind:        e.PaymentModeKind,
		PaymentLink: e.PaymentLink,
		ExternalURL: e.ExternalURL,
	}
}

// Available is the soft capacity headroom. Authoritative enforcement
// happens at the sold-count increment, not here.
func (e *Event) Available() int {
	return e.Capacity - e.SoldCount
}

type EventStats struct {
	EventID      string          `json:"event_id"`
	TicketsPaid  int             `json:"tickets_paid"`
	SeatsSold    int             `json:"seats_sold"`
	SeatsScanned int             `json:"seats_scanned"`
	Revenue      decimal.Decimal `json:"revenue"`
}
