package services

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"xposure-ticketing/models"
)

// SessionRequest describes one hosted-checkout session to create.
type SessionRequest struct {
	EventTitle    string            `json:"event_title"`
	Description   string            `json:"description"`
	ImageURL      string            `json:"image_url,omitempty"`
	UnitAmount    decimal.Decimal   `json:"unit_amount"`
	Currency      string            `json:"currency"`
	Quantity      int               `json:"quantity"`
	CustomerEmail string            `json:"customer_email"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Session is the provider's answer: where to send the buyer, and the
// id the asynchronous confirmation will correlate on.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Notification is a verified payment-provider callback.
type Notification struct {
	SessionID string `json:"session_id"`
	Completed bool   `json:"completed"`
}

// PaymentProvider is the hosted-checkout collaborator. Implementations
// must verify notification signatures before parsing: VerifyNotification
// returns models.ErrInvalidSignature for anything untrusted.
type PaymentProvider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	VerifyNotification(payload []byte, signature string) (*Notification, error)
}

// DeliveryInfo carries the ticket facts the buyer receives by email.
type DeliveryInfo struct {
	Name          string
	EventTitle    string
	EventDate     time.Time
	EventLocation string
	Quantity      int
	Code          string
	TotalAmount   string
}

// TicketDeliverer sends the ticket (email + QR + PDF). Best-effort:
// callers log failures and never roll back a payment over them.
type TicketDeliverer interface {
	DeliverTicket(ctx context.Context, email string, info DeliveryInfo) error
}

// MediaUploader stores an image and returns its public URL. Used only
// at event-authoring time.
type MediaUploader interface {
	Upload(ctx context.Context, file io.Reader) (string, error)
}

// CheckinNotifier publishes successful admissions on the live scanner
// feed. Best-effort.
type CheckinNotifier interface {
	NotifyCheckin(ctx context.Context, ev models.CheckinEvent) error
}
