package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xposure-ticketing/models"
)

func TestRafflePoolListsPaidOnly(t *testing.T) {
	env := newTestEnv(t)
	svc := NewRaffleService(env.tickets)
	ctx := context.Background()

	ev := env.seedEvent(t, nil)
	paid := env.seedTicket(t, ev.ID, nil)
	env.seedTicket(t, ev.ID, func(tk *models.Ticket) { tk.PaymentStatus = models.PaymentPending })

	result, err := svc.Draw(ctx, ev.ID, models.RaffleList)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, paid.Code, result.Entries[0].TicketCode)
	assert.Equal(t, ev.Title, result.Entries[0].EventName)
	assert.Nil(t, result.Winner)
}

func TestRaffleFirstPicksEarliestPurchase(t *testing.T) {
	env := newTestEnv(t)
	svc := NewRaffleService(env.tickets)
	ctx := context.Background()

	ev := env.seedEvent(t, nil)
	env.seedTicket(t, ev.ID, func(tk *models.Ticket) {
		tk.Email = "late@example.com"
	})
	env.seedTicket(t, ev.ID, func(tk *models.Ticket) {
		tk.Email = "early@example.com"
		tk.CreatedAt = time.Now().Add(-48 * time.Hour).UTC()
	})

	result, err := svc.Draw(ctx, ev.ID, models.RaffleFirst)
	require.NoError(t, err)
	require.NotNil(t, result.Winner)
	assert.Equal(t, "early@example.com", result.Winner.Email)
}

func TestRaffleRandomWinnerIsFromPool(t *testing.T) {
	env := newTestEnv(t)
	svc := NewRaffleService(env.tickets)
	ctx := context.Background()

	ev := env.seedEvent(t, nil)
	codes := make(map[string]bool)
	for i := 0; i < 5; i++ {
		ticket := env.seedTicket(t, ev.ID, nil)
		codes[ticket.Code] = true
	}

	result, err := svc.Draw(ctx, ev.ID, models.RaffleRandom)
	require.NoError(t, err)
	require.NotNil(t, result.Winner)
	assert.True(t, codes[result.Winner.TicketCode])
}

func TestRaffleTopBuyerAggregatesAcrossPurchases(t *testing.T) {
	env := newTestEnv(t)
	svc := NewRaffleService(env.tickets)
	ctx := context.Background()

	ev := env.seedEvent(t, nil)
	env.seedTicket(t, ev.ID, func(tk *models.Ticket) {
		tk.Email = "a@example.com"
		tk.Quantity = 3
	})
	env.seedTicket(t, ev.ID, func(tk *models.Ticket) {
		tk.Email = "b@example.com"
		tk.Quantity = 1
	})
	env.seedTicket(t, ev.ID, func(tk *models.Ticket) {
		tk.Email = "a@example.com"
		tk.Quantity = 2
	})

	result, err := svc.Draw(ctx, ev.ID, models.RaffleTopBuyer)
	require.NoError(t, err)
	require.NotNil(t, result.Winner)
	assert.Equal(t, "a@example.com", result.Winner.Email)
	assert.Equal(t, 5, result.Winner.Quantity)
	assert.Equal(t, ev.Title, result.Winner.EventName)
}

func TestRaffleTopBuyerAcrossEvents(t *testing.T) {
	env := newTestEnv(t)
	svc := NewRaffleService(env.tickets)
	ctx := context.Background()

	evA := env.seedEvent(t, nil)
	evB := env.seedEvent(t, nil)
	env.seedTicket(t, evA.ID, func(tk *models.Ticket) {
		tk.Email = "a@example.com"
		tk.Quantity = 2
	})
	env.seedTicket(t, evB.ID, func(tk *models.Ticket) {
		tk.Email = "a@example.com"
		tk.Quantity = 2
	})
	env.seedTicket(t, evA.ID, func(tk *models.Ticket) {
		tk.Email = "b@example.com"
		tk.Quantity = 3
	})

	// Empty event id spans the whole catalog.
	result, err := svc.Draw(ctx, "", models.RaffleTopBuyer)
	require.NoError(t, err)
	require.NotNil(t, result.Winner)
	assert.Equal(t, "a@example.com", result.Winner.Email)
	assert.Equal(t, 4, result.Winner.Quantity)
	assert.Equal(t, "Multiple Events", result.Winner.EventName)
}

func TestRaffleEmptyPool(t *testing.T) {
	env := newTestEnv(t)
	svc := NewRaffleService(env.tickets)
	ctx := context.Background()

	ev := env.seedEvent(t, nil)

	// Listing an empty pool is fine.
	result, err := svc.Draw(ctx, ev.ID, models.RaffleList)
	require.NoError(t, err)
	assert.Empty(t, result.Entries)

	// Drawing a winner from nothing is not.
	_, err = svc.Draw(ctx, ev.ID, models.RaffleRandom)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRaffleUnknownMode(t *testing.T) {
	env := newTestEnv(t)
	svc := NewRaffleService(env.tickets)

	ev := env.seedEvent(t, nil)
	env.seedTicket(t, ev.ID, nil)

	_, err := svc.Draw(context.Background(), ev.ID, "lottery")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
