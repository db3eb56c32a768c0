package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"xposure-ticketing/models"
)

func TestCheckoutCreatesPendingTicket(t *testing.T) {
	env := newTestEnv(t)
	provider := &MockPaymentProvider{}
	svc := NewCheckoutService(env.events, env.tickets, provider, "https://tickets.example", "RON")
	ctx := context.Background()

	ev := env.seedEvent(t, nil)

	var captured SessionRequest
	provider.On("CreateSession", mock.Anything, mock.MatchedBy(func(req SessionRequest) bool {
		captured = req
		return true
	})).Return(&Session{ID: "cs_test_123", URL: "https://checkout.example/cs_test_123"}, nil)

	result, err := svc.Initiate(ctx, CheckoutRequest{
		EventID:  ev.ID,
		Quantity: 2,
		Name:     "Ana Pop",
		Email:    "ana@example.com",
		Phone:    "+40700000000",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/cs_test_123", result.RedirectURL)
	assert.False(t, result.External)

	// The session request carries the correlation metadata.
	assert.Equal(t, ev.ID, captured.Metadata["event_id"])
	assert.Equal(t, "2", captured.Metadata["quantity"])
	assert.Contains(t, captured.SuccessURL, "{CHECKOUT_SESSION_ID}")

	// A pending ticket exists before the buyer is redirected.
	ticket, err := env.tickets.FindBySessionID(ctx, "cs_test_123")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, ticket.PaymentStatus)
	assert.Equal(t, 2, ticket.Quantity)
	assert.True(t, ticket.TotalAmount.Equal(ev.Price.Mul(decimal.NewFromInt(2))))
	assert.Len(t, ticket.Code, 16)
}

func TestCheckoutRejectsInsufficientAvailability(t *testing.T) {
	env := newTestEnv(t)
	provider := &MockPaymentProvider{}
	svc := NewCheckoutService(env.events, env.tickets, provider, "https://tickets.example", "RON")

	ev := env.seedEvent(t, func(e *models.Event) {
		e.Capacity = 10
		e.SoldCount = 7
	})

	_, err := svc.Initiate(context.Background(), CheckoutRequest{
		EventID:  ev.ID,
		Quantity: 5,
		Name:     "Ana Pop",
		Email:    "ana@example.com",
		Phone:    "+40700000000",
	})
	require.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Contains(t, err.Error(), "not enough tickets available")
	provider.AssertNotCalled(t, "CreateSession")
}

func TestCheckoutExternalEventPassesThrough(t *testing.T) {
	env := newTestEnv(t)
	provider := &MockPaymentProvider{}
	svc := NewCheckoutService(env.events, env.tickets, provider, "https://tickets.example", "RON")
	ctx := context.Background()

	ev := env.seedEvent(t, func(e *models.Event) {
		e.PaymentModeKind = models.PaymentModeExternal
		e.PaymentLink = ""
		e.ExternalURL = "https://partner.example/register"
	})

	result, err := svc.Initiate(ctx, CheckoutRequest{
		EventID:  ev.ID,
		Quantity: 1,
		Name:     "Ana Pop",
		Email:    "ana@example.com",
		Phone:    "+40700000000",
	})
	require.NoError(t, err)
	assert.True(t, result.External)
	assert.Equal(t, "https://partner.example/register", result.RedirectURL)

	// No session, no ticket.
	provider.AssertNotCalled(t, "CreateSession")
	count, err := env.events.CountTickets(ctx, ev.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCheckoutHidesUnpublishedEvents(t *testing.T) {
	env := newTestEnv(t)
	provider := &MockPaymentProvider{}
	svc := NewCheckoutService(env.events, env.tickets, provider, "https://tickets.example", "RON")

	ev := env.seedEvent(t, func(e *models.Event) { e.Published = false })

	_, err := svc.Initiate(context.Background(), CheckoutRequest{
		EventID:  ev.ID,
		Quantity: 1,
		Name:     "Ana Pop",
		Email:    "ana@example.com",
		Phone:    "+40700000000",
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCheckoutValidatesRequest(t *testing.T) {
	env := newTestEnv(t)
	provider := &MockPaymentProvider{}
	svc := NewCheckoutService(env.events, env.tickets, provider, "https://tickets.example", "RON")
	ctx := context.Background()

	ev := env.seedEvent(t, nil)

	tests := []struct {
		name   string
		mutate func(*CheckoutRequest)
	}{
		{"missing name", func(r *CheckoutRequest) { r.Name = "" }},
		{"missing email", func(r *CheckoutRequest) { r.Email = "" }},
		{"missing phone", func(r *CheckoutRequest) { r.Phone = "" }},
		{"zero quantity", func(r *CheckoutRequest) { r.Quantity = 0 }},
		{"negative quantity", func(r *CheckoutRequest) { r.Quantity = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := CheckoutRequest{
				EventID:  ev.ID,
				Quantity: 1,
				Name:     "Ana Pop",
				Email:    "ana@example.com",
				Phone:    "+40700000000",
			}
			tt.mutate(&req)
			_, err := svc.Initiate(ctx, req)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestCheckoutProviderFailureLeavesNoTicket(t *testing.T) {
	env := newTestEnv(t)
	provider := &MockPaymentProvider{}
	svc := NewCheckoutService(env.events, env.tickets, provider, "https://tickets.example", "RON")
	ctx := context.Background()

	ev := env.seedEvent(t, nil)
	provider.On("CreateSession", mock.Anything, mock.Anything).Return(nil, errors.New("stripe is down"))

	_, err := svc.Initiate(ctx, CheckoutRequest{
		EventID:  ev.ID,
		Quantity: 1,
		Name:     "Ana Pop",
		Email:    "ana@example.com",
		Phone:    "+40700000000",
	})
	require.ErrorIs(t, err, models.ErrInternal)

	count, err := env.events.CountTickets(ctx, ev.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
