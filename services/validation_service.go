package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"xposure-ticketing/models"
	"xposure-ticketing/monitoring"
	"xposure-ticketing/repository"
)

// ValidationService is the door scanner: one code, one admission.
type ValidationService struct {
	events   *repository.EventRepository
	tickets  *repository.TicketRepository
	notifier CheckinNotifier
	window   time.Duration
}

// NewValidationService wires the scanner. notifier may be nil when no
// live feed is configured; window is how long before the event date a
// ticket becomes scannable.
func NewValidationService(
	events *repository.EventRepository,
	tickets *repository.TicketRepository,
	notifier CheckinNotifier,
	window time.Duration,
) *ValidationService {
	return &ValidationService{
		events:   events,
		tickets:  tickets,
		notifier: notifier,
		window:   window,
	}
}

// ValidationResult is what the scanner screen shows on a successful
// admission.
type ValidationResult struct {
	Code        string          `json:"code"`
	EventTitle  string          `json:"event_title"`
	EventDate   time.Time       `json:"event_date"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ScannedAt   time.Time       `json:"scanned_at"`
}

// Validate admits the ticket behind rawCode at most once. Codes are
// matched case-insensitively. A second scan of the same code returns
// *models.AlreadyScannedError carrying the original admission time.
func (s *ValidationService) Validate(ctx context.Context, rawCode string) (*ValidationResult, error) {
	code := strings.ToUpper(strings.TrimSpace(rawCode))
	if code == "" {
		return nil, fmt.Errorf("%w: ticket code is required", models.ErrInvalidInput)
	}

	ticket, err := s.tickets.FindByCode(ctx, code)
	if err != nil {
		monitoring.ScanRejections.WithLabelValues("not_found").Inc()
		return nil, err
	}

	ev, err := s.events.FindByID(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}

	if ticket.PaymentStatus != models.PaymentPaid {
		monitoring.ScanRejections.WithLabelValues("unpaid").Inc()
		return nil, fmt.Errorf("%w: ticket not valid for entry", models.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if ev.Date.Sub(now) > s.window {
		monitoring.ScanRejections.WithLabelValues("early").Inc()
		return nil, fmt.Errorf("%w: check-in opens closer to the event date (%s)",
			models.ErrInvalidInput, ev.Date.Format("2006-01-02 15:04"))
	}

	won, err := s.tickets.MarkScanned(ctx, ticket.ID, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost the race or the ticket was already in. Re-read for the
		// original timestamp so the door staff see when it happened.
		monitoring.ScanRejections.WithLabelValues("duplicate").Inc()
		scanned, err := s.tickets.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		return nil, &models.AlreadyScannedError{ScannedAt: scanned.ScannedAt}
	}

	monitoring.TicketsScanned.Inc()
	logrus.WithFields(logrus.Fields{
		"code":  ticket.Code,
		"event": ev.Slug,
		"qty":   ticket.Quantity,
	}).Info("ticket scanned")

	if s.notifier != nil {
		err := s.notifier.NotifyCheckin(ctx, models.CheckinEvent{
			Code:       ticket.Code,
			EventID:    ev.ID,
			Name:       ticket.Name,
			EventTitle: ev.Title,
			Quantity:   ticket.Quantity,
			ScannedAt:  now,
		})
		if err != nil {
			// Live feed is decoration; the admission already committed.
			logrus.WithField("code", ticket.Code).WithError(err).Warn("check-in feed publish failed")
		}
	}

	return &ValidationResult{
		Code:        ticket.Code,
		EventTitle:  ev.Title,
		EventDate:   ev.Date,
		Name:        ticket.Name,
		Email:       ticket.Email,
		Phone:       ticket.Phone,
		Quantity:    ticket.Quantity,
		TotalAmount: ticket.TotalAmount,
		ScannedAt:   now,
	}, nil
}
