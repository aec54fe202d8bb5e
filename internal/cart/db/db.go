package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"eventhub/internal/cart"
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

func (d *DB) EventExists(eventID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("id = ?", eventID).
		Exists(context.Background())
}

// GetCartItems returns the raw line sequence in insertion order.
func (d *DB) GetCartItems(userID string) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := d.Bun.NewSelect().
		Model(&items).
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (d *DB) AddCartItem(item models.CartItem) error {
	_, err := d.Bun.NewInsert().Model(&item).Exec(context.Background())
	return err
}

// RemoveOneCartItem deletes the oldest line matching the key, if any.
func (d *DB) RemoveOneCartItem(userID, eventID, ticketType string) (bool, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.CartItem)(nil)).
		Where("id IN (?)", d.Bun.NewSelect().
			Model((*models.CartItem)(nil)).
			Column("id").
			Where("user_id = ?", userID).
			Where("event_id = ?", eventID).
			Where("ticket_type = ?", ticketType).
			Order("id ASC").
			Limit(1)).
		Exec(context.Background())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RemoveCartItems deletes every line matching the key.
func (d *DB) RemoveCartItems(userID, eventID, ticketType string) (int, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.CartItem)(nil)).
		Where("user_id = ?", userID).
		Where("event_id = ?", eventID).
		Where("ticket_type = ?", ticketType).
		Exec(context.Background())
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// PurchaseTransfer applies the cart-to-ticket move as one transaction:
// the named cart rows are deleted, the tickets inserted, and event
// inventory decremented with a guarded update. If any event runs out of
// the requested type the whole transaction rolls back and
// cart.ErrInsufficientInventory is returned.
func (d *DB) PurchaseTransfer(userID string, itemIDs []int64, tickets []models.Ticket) error {
	if len(itemIDs) == 0 {
		return nil
	}

	return d.Bun.RunInTx(context.Background(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*models.CartItem)(nil)).
			Where("user_id = ?", userID).
			Where("id IN (?)", bun.In(itemIDs)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete cart rows: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if int(affected) != len(itemIDs) {
			// Another request consumed some of these lines between the
			// read and the transfer.
			return fmt.Errorf("cart changed during purchase: expected %d rows, removed %d",
				len(itemIDs), affected)
		}

		if _, err := tx.NewInsert().Model(&tickets).Exec(ctx); err != nil {
			return fmt.Errorf("insert tickets: %w", err)
		}

		for key, count := range countByEventType(tickets) {
			column := "general_tickets"
			if key.ticketType == models.TicketTypeVIP {
				column = "vip_tickets"
			}
			res, err := tx.NewUpdate().
				Model((*models.Event)(nil)).
				Set(column+" = "+column+" - ?", count).
				Where("id = ?", key.eventID).
				Where(column+" >= ?", count).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("decrement inventory: %w", err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				return fmt.Errorf("%w: event %s has fewer than %d %s tickets left",
					cart.ErrInsufficientInventory, key.eventID, count, key.ticketType)
			}
		}
		return nil
	})
}

type eventTypeKey struct {
	eventID    string
	ticketType string
}

func countByEventType(tickets []models.Ticket) map[eventTypeKey]int {
	counts := map[eventTypeKey]int{}
	for _, t := range tickets {
		counts[eventTypeKey{t.EventID, t.Type}]++
	}
	return counts
}
