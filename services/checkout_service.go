package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"xposure-ticketing/models"
	"xposure-ticketing/monitoring"
	"xposure-ticketing/repository"
	"xposure-ticketing/utils"
)

// codeAttempts bounds the uniqueness retry loop. A collision at
// 36^16 is already vanishingly unlikely; hitting the bound means the
// store is lying to us.
const codeAttempts = 5

// CheckoutService turns purchase intent into a pending ticket plus a
// redirect target for payment.
type CheckoutService struct {
	events   *repository.EventRepository
	tickets  *repository.TicketRepository
	provider PaymentProvider
	appURL   string
	currency string
}

func NewCheckoutService(
	events *repository.EventRepository,
	tickets *repository.TicketRepository,
	provider PaymentProvider,
	appURL, currency string,
) *CheckoutService {
	return &CheckoutService{
		events:   events,
		tickets:  tickets,
		provider: provider,
		appURL:   appURL,
		currency: currency,
	}
}

type CheckoutRequest struct {
	EventID  string
	Quantity int
	Name     string
	Email    string
	Phone    string
}

type CheckoutResult struct {
	// RedirectURL is the hosted checkout page, or the event's external
	// registration page when External is set.
	RedirectURL string `json:"url"`
	External    bool   `json:"external,omitempty"`
}

// Initiate validates the purchase, reserves a pending ticket and
// returns the payment redirect. The capacity check here is soft: the
// authoritative ceiling is enforced at the sold-count increment when
// the payment confirms.
func (s *CheckoutService) Initiate(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if req.EventID == "" || req.Name == "" || req.Email == "" || req.Phone == "" {
		return nil, fmt.Errorf("%w: missing required fields", models.ErrInvalidInput)
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", models.ErrInvalidInput)
	}

	ev, err := s.events.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if !ev.Published {
		return nil, models.ErrNotFound
	}

	// External-registration events have no checkout of their own: pass
	// the buyer straight through, no ticket, no session.
	if ev.PaymentModeKind == models.PaymentModeExternal {
		return &CheckoutResult{RedirectURL: ev.ExternalURL, External: true}, nil
	}

	if req.Quantity > ev.Available() {
		return nil, fmt.Errorf("%w: not enough tickets available", models.ErrInvalidInput)
	}
	if !ev.Price.IsPositive() {
		return nil, fmt.Errorf("%w: event price is not purchasable", models.ErrInvalidInput)
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	total := ev.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))

	session, err := s.provider.CreateSession(ctx, SessionRequest{
		EventTitle:    ev.Title,
		Description:   fmt.Sprintf("%d x Bilet %s", req.Quantity, ev.Title),
		ImageURL:      ev.ImageURL,
		UnitAmount:    ev.Price,
		Currency:      s.currency,
		Quantity:      req.Quantity,
		CustomerEmail: req.Email,
		SuccessURL:    s.appURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.appURL + "/event/" + url.PathEscape(ev.Slug),
		Metadata: map[string]string{
			"event_id":    ev.ID,
			"ticket_code": code,
			"name":        req.Name,
			"phone":       req.Phone,
			"quantity":    fmt.Sprintf("%d", req.Quantity),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create payment session: %v", models.ErrInternal, err)
	}

	// Persist before handing back the redirect so a confirmation that
	// races the response can already find the ticket.
	ticket := &models.Ticket{
		ID:                uuid.NewString(),
		Code:              code,
		EventID:           ev.ID,
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Quantity:          req.Quantity,
		TotalAmount:       total,
		Currency:          s.currency,
		ProviderSessionID: session.ID,
		PaymentStatus:     models.PaymentPending,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	monitoring.CheckoutsInitiated.Inc()
	logrus.WithFields(logrus.Fields{
		"event":   ev.Slug,
		"code":    code,
		"qty":     req.Quantity,
		"session": session.ID,
	}).Info("checkout session created")

	return &CheckoutResult{RedirectURL: session.URL}, nil
}

// uniqueCode draws codes until one is free. The insert's unique index
// still backs this up against a concurrent draw of the same code.
func (s *CheckoutService) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := utils.GenerateTicketCode(utils.TicketCodeLength)
		if err != nil {
			return "", fmt.Errorf("%w: generate code: %v", models.ErrInternal, err)
		}

		taken, err := s.tickets.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: could not generate a unique ticket code", models.ErrInternal)
}
