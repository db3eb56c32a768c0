package models

import (
	"time"
)

// RaffleMode selects how a draw is performed over the paid-ticket pool.
type RaffleMode string

const (
	RaffleList     RaffleMode = "list"      // full ordered pool
	RaffleRandom   RaffleMode = "random"    // one uniformly random winner
	RaffleFirst    RaffleMode = "first"     // earliest purchase
	RaffleTopBuyer RaffleMode = "top_buyer" // buyer with the highest total quantity
)

// RaffleEntry is one participant in the pool, shaped for the admin
// panel. Aggregated modes (top_buyer) sum Quantity across purchases.
type RaffleEntry struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Quantity    int       `json:"quantity"`
	TicketCode  string    `json:"ticket_code"`
	EventName   string    `json:"event_name"`
	PurchasedAt time.Time `json:"purchased_at"`
}
