package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus of a ticket. A ticket is created pending, becomes paid
// exactly once on a confirmed payment, or failed when the confirmation
// was rejected (e.g. capacity exhausted, refund required).
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Ticket is the unit of both payment and admission. The code doubles
// as the door-entry credential and is stored uppercase.
type Ticket struct {
	ID                string          `db:"id" json:"id"`
	Code              string          `db:"code" json:"code"`
	EventID           string          `db:"event_id" json:"event_id"`
	Name              string          `db:"name" json:"name"`
	Email             string          `db:"email" json:"email"`
	Phone             string          `db:"phone" json:"phone"`
	Quantity          int             `db:"quantity" json:"quantity"`
	TotalAmount       decimal.Decimal `db:"total_amount" json:"total_amount"`
	Currency          string          `db:"currency" json:"currency"`
	ProviderSessionID string          `db:"provider_session_id" json:"provider_session_id"`
	PaymentStatus     PaymentStatus   `db:"payment_status" json:"payment_status"`
	Scanned           bool            `db:"scanned" json:"scanned"`
	ScannedAt         *time.Time      `db:"scanned_at" json:"scanned_at,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}

// FormatAmount renders the total the way it appears on the ticket
// email, e.g. "300.00 RON".
func (t *Ticket) FormatAmount() string {
	return t.TotalAmount.StringFixed(2) + " " + t.Currency
}

// PaidTicket is a ledger row joined with its event, used by the
// raffle and reporting queries.
type PaidTicket struct {
	Ticket
	EventTitle string `db:"event_title" json:"event_title"`
}

// CheckinEvent is published on the live scanner feed after a
// successful admission.
type CheckinEvent struct {
	Code       string    `json:"code"`
	EventID    string    `json:"event_id"`
	EventTitle string    `json:"event_title"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	ScannedAt  time.Time `json:"scanned_at"`
}
