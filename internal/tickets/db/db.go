package db

import (
	"context"

	"github.com/uptrace/bun"

	"eventhub/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) UserExists(userID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("id = ?", userID).
		Exists(context.Background())
}

// GetTicketsByUser returns the purchase history oldest first.
func (d *DB) GetTicketsByUser(userID string) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("user_id = ?", userID).
		Order("purchased_at ASC", "id ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetTotalTicketsCount returns the total count of tickets in the database.
func (d *DB) GetTotalTicketsCount() (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Count(context.Background())
}
