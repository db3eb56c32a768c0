package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"

	"xposure-ticketing/models"
)

// ConfirmOutcome reports what a payment confirmation actually did.
type ConfirmOutcome int

const (
	// ConfirmApplied: this call won the pending->paid transition and
	// the sold count was incremented.
	ConfirmApplied ConfirmOutcome = iota
	// ConfirmDuplicate: the ticket was no longer pending; a previous
	// (or concurrent) delivery of the same notification already won.
	ConfirmDuplicate
	// ConfirmSoldOut: the increment would have exceeded capacity; the
	// transaction was rolled back and the ticket marked failed.
	ConfirmSoldOut
)

// errCapacityExceeded aborts the confirmation transaction.
var errCapacityExceeded = errors.New("capacity exceeded")

type TicketRepository struct {
	db *dbx.DB
}

func NewTicketRepository(db *dbx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, t *models.Ticket) error {
	_, err := r.db.Insert("tickets", dbx.Params{
		"id":                  t.ID,
		"code":                t.Code,
		"event_id":            t.EventID,
		"name":                t.Name,
		"email":               t.Email,
		"phone":               t.Phone,
		"quantity":            t.Quantity,
		"total_amount":        t.TotalAmount,
		"currency":            t.Currency,
		"provider_session_id": t.ProviderSessionID,
		"payment_status":      t.PaymentStatus,
		"scanned":             t.Scanned,
		"scanned_at":          t.ScannedAt,
		"created_at":          t.CreatedAt,
	}).WithContext(ctx).Execute()
	if err != nil {
		// Unique code index is the last line of defence when two
		// checkouts draw the same code concurrently.
		return fmt.Errorf("%w: insert ticket: %v", models.ErrConflict, err)
	}
	return nil
}

// CodeExists checks a candidate code against the store. Codes are
// stored uppercase, so the comparison is effectively case-insensitive.
func (r *TicketRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int
	err := r.db.NewQuery(`SELECT COUNT(*) FROM tickets WHERE code={:code}`).
		Bind(dbx.Params{"code": code}).
		WithContext(ctx).
		Row(&count)
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	return count > 0, nil
}

func (r *TicketRepository) FindByCode(ctx context.Context, code string) (*models.Ticket, error) {
	var t models.Ticket
	err := r.db.NewQuery(`SELECT * FROM tickets WHERE code={:code}`).
		Bind(dbx.Params{"code": code}).
		WithContext(ctx).
		One(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	return &t, nil
}

func (r *TicketRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.Ticket, error) {
	var t models.Ticket
	err := r.db.NewQuery(`SELECT * FROM tickets WHERE provider_session_id={:sid}`).
		Bind(dbx.Params{"sid": sessionID}).
		WithContext(ctx).
		One(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find ticket by session: %w", err)
	}
	return &t, nil
}

// ConfirmPayment performs the one transition where money becomes
// capacity: pending->paid on the ticket plus the sold-count increment
// on the event, in a single transaction. Both writes are conditional,
// so duplicate deliveries and concurrent confirmations collapse to
// exactly one applied transition, and the increment can never push
// sold_count past capacity.
func (r *TicketRepository) ConfirmPayment(ctx context.Context, ticketID, eventID string, quantity int) (ConfirmOutcome, error) {
	outcome := ConfirmApplied

	err := r.db.TransactionalContext(ctx, nil, func(tx *dbx.Tx) error {
		res, err := tx.NewQuery(`
			UPDATE tickets
			SET payment_status={:paid}
			WHERE id={:id} AND payment_status={:pending}
		`).Bind(dbx.Params{
			"paid":    models.PaymentPaid,
			"pending": models.PaymentPending,
			"id":      ticketID,
		}).Execute()
		if err != nil {
			return err
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			outcome = ConfirmDuplicate
			return nil
		}

		res, err = tx.NewQuery(`
			UPDATE events
			SET sold_count = sold_count + {:qty}
			WHERE id={:id} AND sold_count + {:qty} <= capacity
		`).Bind(dbx.Params{
			"qty": quantity,
			"id":  eventID,
		}).Execute()
		if err != nil {
			return err
		}

		rows, err = res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			// Roll back the status transition as well.
			return errCapacityExceeded
		}
		return nil
	})

	if errors.Is(err, errCapacityExceeded) {
		if err := r.markFailed(ctx, ticketID); err != nil {
			return ConfirmSoldOut, err
		}
		return ConfirmSoldOut, nil
	}
	if err != nil {
		return outcome, fmt.Errorf("confirm payment: %w", err)
	}
	return outcome, nil
}

// markFailed parks an unconfirmable ticket so a redelivered
// notification does not retry the increment forever.
func (r *TicketRepository) markFailed(ctx context.Context, ticketID string) error {
	_, err := r.db.NewQuery(`
		UPDATE tickets
		SET payment_status={:failed}
		WHERE id={:id} AND payment_status={:pending}
	`).Bind(dbx.Params{
		"failed":  models.PaymentFailed,
		"pending": models.PaymentPending,
		"id":      ticketID,
	}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("mark ticket failed: %w", err)
	}
	return nil
}

// MarkScanned is the at-most-once admission write. The affected-row
// count is the sole source of truth for who won: under two concurrent
// scans of the same code exactly one caller sees true.
func (r *TicketRepository) MarkScanned(ctx context.Context, ticketID string, at time.Time) (bool, error) {
	res, err := r.db.NewQuery(`
		UPDATE tickets
		SET scanned={:scanned}, scanned_at={:at}
		WHERE id={:id} AND scanned={:unscanned}
	`).Bind(dbx.Params{
		"scanned":   true,
		"unscanned": false,
		"at":        at,
		"id":        ticketID,
	}).WithContext(ctx).Execute()
	if err != nil {
		return false, fmt.Errorf("mark scanned: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark scanned: %w", err)
	}
	return rows == 1, nil
}

// ListPaid returns the raffle pool: paid tickets joined with their
// event title, oldest purchase first. An empty eventID means all
// events.
func (r *TicketRepository) ListPaid(ctx context.Context, eventID string) ([]models.PaidTicket, error) {
	query := `
		SELECT t.*, e.title AS event_title
		FROM tickets t
		INNER JOIN events e ON e.id = t.event_id
		WHERE t.payment_status={:paid}
		ORDER BY t.created_at ASC`
	params := dbx.Params{"paid": models.PaymentPaid}

	if eventID != "" {
		query = `
		SELECT t.*, e.title AS event_title
		FROM tickets t
		INNER JOIN events e ON e.id = t.event_id
		WHERE t.payment_status={:paid} AND t.event_id={:event}
		ORDER BY t.created_at ASC`
		params["event"] = eventID
	}

	var tickets []models.PaidTicket
	err := r.db.NewQuery(query).Bind(params).WithContext(ctx).All(&tickets)
	if err != nil {
		return nil, fmt.Errorf("list paid tickets: %w", err)
	}
	return tickets, nil
}

// Stats reduces the ledger into the admin dashboard numbers for one
// event. Read-only; revenue is summed in Go because amounts are
// stored as decimal strings.
func (r *TicketRepository) Stats(ctx context.Context, eventID string) (*models.EventStats, error) {
	paid, err := r.ListPaid(ctx, eventID)
	if err != nil {
		return nil, err
	}

	stats := &models.EventStats{EventID: eventID}
	for _, t := range paid {
		stats.TicketsPaid++
		stats.SeatsSold += t.Quantity
		if t.Scanned {
			stats.SeatsScanned += t.Quantity
		}
		stats.Revenue = stats.Revenue.Add(t.TotalAmount)
	}
	return stats, nil
}
