package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EventCategories is the set of accepted values for Event.Category.
var EventCategories = []string{"music", "sports", "theater", "comedy", "food", "other"}

func ValidCategory(category string) bool {
	for _, c := range EventCategories {
		if c == category {
			return true
		}
	}
	return false
}

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID             string    `bun:"id,pk" json:"id"`
	Title          string    `bun:"title,notnull" json:"title"`
	Date           string    `bun:"date,notnull" json:"date"`
	Location       string    `bun:"location,notnull" json:"location"`
	Image          string    `bun:"image" json:"image"`
	Category       string    `bun:"category,notnull" json:"category"`
	Description    string    `bun:"description,nullzero" json:"description,omitempty"`
	GeneralTickets int       `bun:"general_tickets,notnull,default:100" json:"generalTickets"`
	VipTickets     int       `bun:"vip_tickets,notnull,default:20" json:"vipTickets"`
	GeneralPrice   float64   `bun:"general_price,notnull" json:"generalPrice"`
	VipPrice       float64   `bun:"vip_price,notnull" json:"vipPrice"`
	HostID         string    `bun:"host_id,nullzero" json:"hostId,omitempty"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// EventFilter narrows event listings. Zero values mean "no filter".
type EventFilter struct {
	FromDate string
	Location string
	Search   string
	Category string
}
