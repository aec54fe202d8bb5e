package models

import "time"

// PurchaseNotice is the payload broadcast to live subscribers when a
// cart line is converted into a ticket.
type PurchaseNotice struct {
	UserID      string    `json:"userId"`
	EventID     string    `json:"eventId"`
	TicketID    string    `json:"ticketId"`
	Type        string    `json:"type"`
	PurchasedAt time.Time `json:"purchasedAt"`
}
