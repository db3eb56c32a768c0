package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"xposure-ticketing/models"
	"xposure-ticketing/repository"
)

// testEnv bundles a file-backed sqlite store with the repositories the
// services depend on.
type testEnv struct {
	db      *dbx.DB
	events  *repository.EventRepository
	tickets *repository.TicketRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s/test.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", t.TempDir())
	db, err := dbx.Open("sqlite", dsn)
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() { db.Close() })

	return &testEnv{
		db:      db,
		events:  repository.NewEventRepository(db),
		tickets: repository.NewTicketRepository(db),
	}
}

func (env *testEnv) seedEvent(t *testing.T, mutate func(*models.Event)) *models.Event {
	t.Helper()

	id := uuid.NewString()
	ev := &models.Event{
		ID:              id,
		Slug:            "event-" + id[:8],
		Title:           "Event " + id[:8],
		Date:            time.Now().Add(12 * time.Hour).UTC(),
		Price:           decimal.NewFromInt(150),
		Capacity:        100,
		LocationName:    "Club Control",
		LocationAddress: "Strada Academiei 19",
		ImageURL:        "https://img.example/cover.jpg",
		Published:       true,
		PaymentModeKind: models.PaymentModeStandard,
		PaymentLink:     "https://pay.example/x",
		CreatedAt:       time.Now().UTC(),
	}
	if mutate != nil {
		mutate(ev)
	}
	require.NoError(t, env.events.Create(context.Background(), ev))
	return ev
}

func (env *testEnv) seedTicket(t *testing.T, eventID string, mutate func(*models.Ticket)) *models.Ticket {
	t.Helper()

	id := uuid.NewString()
	ticket := &models.Ticket{
		ID:                id,
		Code:              strings.ToUpper(strings.ReplaceAll(id, "-", ""))[:16],
		EventID:           eventID,
		Name:              "Ana Pop",
		Email:             "ana@example.com",
		Phone:             "+40700000000",
		Quantity:          1,
		TotalAmount:       decimal.NewFromInt(150),
		Currency:          "RON",
		ProviderSessionID: "cs_" + id[:8],
		PaymentStatus:     models.PaymentPaid,
		CreatedAt:         time.Now().UTC(),
	}
	if mutate != nil {
		mutate(ticket)
	}
	require.NoError(t, env.tickets.Create(context.Background(), ticket))
	return ticket
}

// MockPaymentProvider implements PaymentProvider for tests.
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	args := m.Called(ctx, req)
	if session, ok := args.Get(0).(*Session); ok {
		return session, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentProvider) VerifyNotification(payload []byte, signature string) (*Notification, error) {
	args := m.Called(payload, signature)
	if n, ok := args.Get(0).(*Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockDeliverer implements TicketDeliverer for tests.
type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) DeliverTicket(ctx context.Context, email string, info DeliveryInfo) error {
	args := m.Called(ctx, email, info)
	return args.Error(0)
}

// MockNotifier implements CheckinNotifier for tests.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyCheckin(ctx context.Context, ev models.CheckinEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
