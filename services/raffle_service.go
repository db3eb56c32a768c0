package services

import (
	"context"
	"fmt"
	"math/rand/v2"

	"xposure-ticketing/models"
	"xposure-ticketing/repository"
)

// RaffleService runs giveaways over paid tickets. The pool can be a
// single event or the whole catalog (empty eventID).
type RaffleService struct {
	tickets *repository.TicketRepository
}

func NewRaffleService(tickets *repository.TicketRepository) *RaffleService {
	return &RaffleService{tickets: tickets}
}

// RaffleResult is one draw: the full pool for "list", a single winner
// otherwise.
type RaffleResult struct {
	Mode    models.RaffleMode    `json:"mode"`
	Entries []models.RaffleEntry `json:"entries,omitempty"`
	Winner  *models.RaffleEntry  `json:"winner,omitempty"`
}

// Pool returns the raffle entries, oldest purchase first.
func (s *RaffleService) Pool(ctx context.Context, eventID string) ([]models.RaffleEntry, error) {
	paid, err := s.tickets.ListPaid(ctx, eventID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.RaffleEntry, 0, len(paid))
	for _, t := range paid {
		entries = append(entries, models.RaffleEntry{
			Name:        t.Name,
			Email:       t.Email,
			Phone:       t.Phone,
			Quantity:    t.Quantity,
			TicketCode:  t.Code,
			EventName:   t.EventTitle,
			PurchasedAt: t.CreatedAt,
		})
	}
	return entries, nil
}

// Draw picks from the pool according to mode. An empty pool is
// models.ErrNotFound: there is nobody to win.
func (s *RaffleService) Draw(ctx context.Context, eventID string, mode models.RaffleMode) (*RaffleResult, error) {
	entries, err := s.Pool(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if mode == models.RaffleList {
		return &RaffleResult{Mode: mode, Entries: entries}, nil
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no paid tickets in the raffle pool", models.ErrNotFound)
	}

	switch mode {
	case models.RaffleRandom:
		winner := entries[rand.IntN(len(entries))]
		return &RaffleResult{Mode: mode, Winner: &winner}, nil

	case models.RaffleFirst:
		// Pool is ordered by purchase time ascending.
		winner := entries[0]
		return &RaffleResult{Mode: mode, Winner: &winner}, nil

	case models.RaffleTopBuyer:
		winner := topBuyer(entries)
		return &RaffleResult{Mode: mode, Winner: winner}, nil

	default:
		return nil, fmt.Errorf("%w: unknown raffle mode %q", models.ErrInvalidInput, mode)
	}
}

// topBuyer aggregates quantities per email and returns the buyer with
// the most seats. Ties go to the earlier first purchase, which the
// pool ordering already guarantees.
func topBuyer(entries []models.RaffleEntry) *models.RaffleEntry {
	type agg struct {
		entry  models.RaffleEntry
		total  int
		events map[string]struct{}
	}

	byEmail := make(map[string]*agg)
	order := make([]string, 0)
	for _, e := range entries {
		a, ok := byEmail[e.Email]
		if !ok {
			a = &agg{entry: e, events: make(map[string]struct{})}
			byEmail[e.Email] = a
			order = append(order, e.Email)
		}
		a.total += e.Quantity
		a.events[e.EventName] = struct{}{}
	}

	var best *agg
	for _, email := range order {
		a := byEmail[email]
		if best == nil || a.total > best.total {
			best = a
		}
	}

	winner := best.entry
	winner.Quantity = best.total
	if len(best.events) > 1 {
		winner.EventName = "Multiple Events"
	}
	return &winner
}
