package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"xposure-ticketing/models"
	"xposure-ticketing/monitoring"
	"xposure-ticketing/repository"
)

// ConfirmationService is the single place where a provider's "money
// received" becomes consumed capacity plus a delivered ticket. The
// provider redelivers notifications until it sees success, so every
// path that is not an authentication failure must acknowledge.
type ConfirmationService struct {
	events    *repository.EventRepository
	tickets   *repository.TicketRepository
	provider  PaymentProvider
	deliverer TicketDeliverer
}

func NewConfirmationService(
	events *repository.EventRepository,
	tickets *repository.TicketRepository,
	provider PaymentProvider,
	deliverer TicketDeliverer,
) *ConfirmationService {
	return &ConfirmationService{
		events:    events,
		tickets:   tickets,
		provider:  provider,
		deliverer: deliverer,
	}
}

// HandleNotification verifies and applies one provider callback.
// Returns models.ErrInvalidSignature for untrusted payloads; every
// other outcome is an acknowledgement (nil), including duplicates and
// sessions we never created.
func (s *ConfirmationService) HandleNotification(ctx context.Context, payload []byte, signature string) error {
	n, err := s.provider.VerifyNotification(payload, signature)
	if err != nil {
		if errors.Is(err, models.ErrInvalidSignature) {
			return err
		}
		return models.ErrInvalidSignature
	}

	// Events other than a completed checkout are acknowledged and
	// dropped.
	if !n.Completed {
		return nil
	}

	ticket, err := s.tickets.FindBySessionID(ctx, n.SessionID)
	if errors.Is(err, models.ErrNotFound) {
		// Abandoned or foreign session. Acknowledge: surfacing an error
		// here would only trigger a redelivery loop for a ticket that
		// will never exist.
		logrus.WithField("session", n.SessionID).Warn("payment confirmed for unknown session")
		return nil
	}
	if err != nil {
		return err
	}

	outcome, err := s.tickets.ConfirmPayment(ctx, ticket.ID, ticket.EventID, ticket.Quantity)
	if err != nil {
		return err
	}

	switch outcome {
	case repository.ConfirmDuplicate:
		// Redelivery: the increment and the email already happened.
		monitoring.DuplicateConfirmations.Inc()
		logrus.WithField("code", ticket.Code).Info("duplicate payment notification ignored")
		return nil

	case repository.ConfirmSoldOut:
		// Money moved but the event is full. The ticket is parked as
		// failed; flag it loudly so the refund is handled out of band.
		monitoring.OversoldRejections.Inc()
		logrus.WithFields(logrus.Fields{
			"code":  ticket.Code,
			"event": ticket.EventID,
			"qty":   ticket.Quantity,
		}).Error("paid ticket exceeds capacity, refund required")
		return nil
	}

	monitoring.PaymentsConfirmed.Inc()
	logrus.WithFields(logrus.Fields{
		"code": ticket.Code,
		"qty":  ticket.Quantity,
	}).Info("payment confirmed")

	s.deliver(ctx, ticket)
	return nil
}

// deliver sends the ticket email after the transition committed.
// Failures are logged, never propagated: the sale is already final and
// the notifier must not be made to retry it.
func (s *ConfirmationService) deliver(ctx context.Context, ticket *models.Ticket) {
	ev, err := s.events.FindByID(ctx, ticket.EventID)
	if err != nil {
		monitoring.TicketDeliveries.WithLabelValues("error").Inc()
		logrus.WithField("code", ticket.Code).WithError(err).Error("ticket delivery: event lookup failed")
		return
	}

	err = s.deliverer.DeliverTicket(ctx, ticket.Email, DeliveryInfo{
		Name:          ticket.Name,
		EventTitle:    ev.Title,
		EventDate:     ev.Date,
		EventLocation: ev.LocationName,
		Quantity:      ticket.Quantity,
		Code:          ticket.Code,
		TotalAmount:   ticket.FormatAmount(),
	})
	if err != nil {
		monitoring.TicketDeliveries.WithLabelValues("error").Inc()
		logrus.WithField("code", ticket.Code).WithError(err).Error("ticket delivery failed")
		return
	}

	monitoring.TicketDeliveries.WithLabelValues("sent").Inc()
	logrus.WithField("code", ticket.Code).Info("ticket email sent")
}
