package models

import (
	"github.com/uptrace/bun"
)

const (
	TicketTypeGeneral = "general"
	TicketTypeVIP     = "vip"
)

// ValidTicketType reports whether t is one of the two sellable types.
func ValidTicketType(t string) bool {
	return t == TicketTypeGeneral || t == TicketTypeVIP
}

// CartItem is one pending ticket selection. Quantity is represented by
// repeated rows sharing the same (user_id, event_id, ticket_type) key,
// never by a count column.
type CartItem struct {
	bun.BaseModel `bun:"table:cart_items"`

	ID         int64  `bun:"id,pk,autoincrement" json:"-"`
	UserID     string `bun:"user_id,notnull" json:"-"`
	EventID    string `bun:"event_id,notnull" json:"eventId"`
	TicketType string `bun:"ticket_type,notnull" json:"ticketType"`
}

// CartLineGroup is the read-side projection of a cart: lines grouped by
// (eventId, ticketType) with a derived quantity. It is computed on
// demand and never stored.
type CartLineGroup struct {
	EventID    string `json:"eventId"`
	TicketType string `json:"ticketType"`
	Quantity   int    `json:"quantity"`
}

// GroupCartItems folds repeated lines into per-key quantities, keeping
// the order in which each key first appears.
func GroupCartItems(items []CartItem) []CartLineGroup {
	groups := []CartLineGroup{}
	index := map[[2]string]int{}
	for _, item := range items {
		key := [2]string{item.EventID, item.TicketType}
		if i, ok := index[key]; ok {
			groups[i].Quantity++
			continue
		}
		index[key] = len(groups)
		groups = append(groups, CartLineGroup{
			EventID:    item.EventID,
			TicketType: item.TicketType,
			Quantity:   1,
		})
	}
	return groups
}

type CartItemRequest struct {
	EventID    string `json:"eventId"`
	TicketType string `json:"ticketType"`
}

type CartUpdateRequest struct {
	EventID    string `json:"eventId"`
	TicketType string `json:"ticketType"`
	Action     string `json:"action"`
}

type PurchaseSingleRequest struct {
	EventID    string `json:"eventId"`
	TicketType string `json:"ticketType"`
	Quantity   int    `json:"quantity"`
}
