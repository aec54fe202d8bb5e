package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ticket is a permanent purchase record. Once written it is never
// mutated or deleted.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID          string    `bun:"id,pk" json:"id"`
	UserID      string    `bun:"user_id,notnull" json:"-"`
	EventID     string    `bun:"event_id,notnull" json:"eventId"`
	Type        string    `bun:"type,notnull" json:"type"`
	QRCode      []byte    `bun:"qr_code" json:"qrCode,omitempty"`
	PurchasedAt time.Time `bun:"purchased_at,notnull" json:"purchasedAt"`
}
