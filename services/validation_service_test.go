package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"xposure-ticketing/models"
)

func TestValidateAdmitsPaidTicket(t *testing.T) {
	env := newTestEnv(t)
	notifier := &MockNotifier{}
	svc := NewValidationService(env.events, env.tickets, notifier, 24*time.Hour)
	ctx := context.Background()

	ev := env.seedEvent(t, nil)
	ticket := env.seedTicket(t, ev.ID, func(tk *models.Ticket) { tk.Quantity = 2 })

	notifier.On("NotifyCheckin", mock.Anything, mock.MatchedBy(func(ce models.CheckinEvent) bool {
		return ce.Code == ticket.Code && ce.Quantity == 2
	})).Return(nil)

	result, err := svc.Validate(ctx, ticket.Code)
	require.NoError(t, err)
	assert.Equal(t, ev.Title, result.EventTitle)
	assert.Equal(t, ticket.Name, result.Name)
	assert.Equal(t, 2, result.Quantity)
	assert.False(t, result.ScannedAt.IsZero())

	stored, err := env.tickets.FindByCode(ctx, ticket.Code)
	require.NoError(t, err)
	assert.True(t, stored.Scanned)
	notifier.AssertExpectations(t)
}

func TestValidateMatchesCodeCaseInsensitively(t *testing.T) {
	env := newTestEnv(t)
	svc := NewValidationService(env.events, env.tickets, nil, 24*time.Hour)

	ev := env.seedEvent(t, nil)
	ticket := env.seedTicket(t, ev.ID, nil)

	_, err := svc.Validate(context.Background(), "  "+strings.ToLower(ticket.Code)+" ")
	require.NoError(t, err)
}

func TestValidateRejectsUnknownCode(t *testing.T) {
	env := newTestEnv(t)
	svc := NewValidationService(env.events, env.tickets, nil, 24*time.Hour)

	_, err := svc.Validate(context.Background(), "NOSUCHCODE123456")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.Validate(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestValidateRejectsUnpaidTicket(t *testing.T) {
	env := newTestEnv(t)
	svc := NewValidationService(env.events, env.tickets, nil, 24*time.Hour)
	ctx := context.Background()

	ev := env.seedEvent(t, nil)

	for _, status := range []models.PaymentStatus{models.PaymentPending, models.PaymentFailed} {
		ticket := env.seedTicket(t, ev.ID, func(tk *models.Ticket) { tk.PaymentStatus = status })
		_, err := svc.Validate(ctx, ticket.Code)
		require.ErrorIs(t, err, models.ErrInvalidInput)
		assert.Contains(t, err.Error(), "not valid for entry")
	}
}

func TestValidateRejectsBeforeCheckinWindow(t *testing.T) {
	env := newTestEnv(t)
	svc := NewValidationService(env.events, env.tickets, nil, 24*time.Hour)

	ev := env.seedEvent(t, func(e *models.Event) {
		e.Date = time.Now().Add(72 * time.Hour).UTC()
	})
	ticket := env.seedTicket(t, ev.ID, nil)

	_, err := svc.Validate(context.Background(), ticket.Code)
	require.ErrorIs(t, err, models.ErrInvalidInput)

	// The ticket is untouched and stays scannable for the event day.
	stored, err := env.tickets.FindByCode(context.Background(), ticket.Code)
	require.NoError(t, err)
	assert.False(t, stored.Scanned)
}

func TestValidateSecondScanReportsOriginalTime(t *testing.T) {
	env := newTestEnv(t)
	svc := NewValidationService(env.events, env.tickets, nil, 24*time.Hour)
	ctx := context.Background()

	ev := env.seedEvent(t, nil)
	ticket := env.seedTicket(t, ev.ID, nil)

	first, err := svc.Validate(ctx, ticket.Code)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, ticket.Code)
	var scanned *models.AlreadyScannedError
	require.ErrorAs(t, err, &scanned)
	require.NotNil(t, scanned.ScannedAt)
	assert.WithinDuration(t, first.ScannedAt, *scanned.ScannedAt, time.Second)
	assert.Contains(t, err.Error(), "already scanned at")
}

func TestValidateConcurrentScansAdmitOnce(t *testing.T) {
	env := newTestEnv(t)
	svc := NewValidationService(env.events, env.tickets, nil, 24*time.Hour)
	ctx := context.Background()

	ev := env.seedEvent(t, nil)
	ticket := env.seedTicket(t, ev.ID, nil)

	const scanners = 8
	admitted := make(chan bool, scanners)
	var wg sync.WaitGroup
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Validate(ctx, ticket.Code)
			admitted <- err == nil
		}()
	}
	wg.Wait()
	close(admitted)

	wins := 0
	for ok := range admitted {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestValidateNotifierFailureDoesNotBlockAdmission(t *testing.T) {
	env := newTestEnv(t)
	notifier := &MockNotifier{}
	svc := NewValidationService(env.events, env.tickets, notifier, 24*time.Hour)

	ev := env.seedEvent(t, nil)
	ticket := env.seedTicket(t, ev.ID, nil)

	notifier.On("NotifyCheckin", mock.Anything, mock.Anything).Return(errors.New("pubnub down"))

	_, err := svc.Validate(context.Background(), ticket.Code)
	require.NoError(t, err)
}
