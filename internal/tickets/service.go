// Package tickets serves the read side of purchase history. Tickets
// are written only by the cart service's purchase transfer; nothing
// here mutates them.
package tickets

import (
	"fmt"

	"eventhub/internal/models"
)

type TicketDBLayer interface {
	UserExists(userID string) (bool, error)
	GetTicketsByUser(userID string) ([]models.Ticket, error)
	GetTotalTicketsCount() (int, error)
}

type TicketService struct {
	DB TicketDBLayer
}

func NewTicketService(db TicketDBLayer) *TicketService {
	return &TicketService{DB: db}
}

// GetTicketsByUser returns the full purchase history, oldest first. An
// empty history is a valid result, not an error.
func (s *TicketService) GetTicketsByUser(userID string) ([]models.Ticket, error) {
	exists, err := s.DB.UserExists(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %s: %w", userID, err)
	}
	if !exists {
		return nil, fmt.Errorf("user %s not found", userID)
	}

	tickets, err := s.DB.GetTicketsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for user %s: %w", userID, err)
	}
	return tickets, nil
}

// GetTotalTicketsCount returns the total number of tickets ever sold.
func (s *TicketService) GetTotalTicketsCount() (int, error) {
	return s.DB.GetTotalTicketsCount()
}
