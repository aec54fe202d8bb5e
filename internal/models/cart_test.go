package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupCartItems(t *testing.T) {
	items := []CartItem{
		{ID: 1, UserID: "u", EventID: "E1", TicketType: "general"},
		{ID: 2, UserID: "u", EventID: "E2", TicketType: "vip"},
		{ID: 3, UserID: "u", EventID: "E1", TicketType: "general"},
		{ID: 4, UserID: "u", EventID: "E1", TicketType: "vip"},
		{ID: 5, UserID: "u", EventID: "E1", TicketType: "general"},
	}

	groups := GroupCartItems(items)

	// Keys appear in first-seen order with folded quantities
	assert.Equal(t, []CartLineGroup{
		{EventID: "E1", TicketType: "general", Quantity: 3},
		{EventID: "E2", TicketType: "vip", Quantity: 1},
		{EventID: "E1", TicketType: "vip", Quantity: 1},
	}, groups)
}

func TestGroupCartItemsEmpty(t *testing.T) {
	groups := GroupCartItems(nil)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestValidTicketType(t *testing.T) {
	assert.True(t, ValidTicketType("general"))
	assert.True(t, ValidTicketType("vip"))
	assert.False(t, ValidTicketType("student"))
	assert.False(t, ValidTicketType(""))
	assert.False(t, ValidTicketType("General"))
}
