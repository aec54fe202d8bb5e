package db

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	"eventhub/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateEvent(event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(context.Background())
	return err
}

func (d *DB) GetEventByID(id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) UpdateEvent(event models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(&event).
		Column("title", "date", "location", "image", "category", "description",
			"general_tickets", "vip_tickets", "general_price", "vip_price").
		Where("id = ?", event.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteEvent(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// ListEvents applies the optional filters and sorts by date ascending.
func (d *DB) ListEvents(filter models.EventFilter) ([]models.Event, error) {
	events := []models.Event{}
	q := d.Bun.NewSelect().Model(&events)

	if filter.FromDate != "" {
		q = q.Where("date >= ?", filter.FromDate)
	}
	if filter.Location != "" {
		q = q.Where("lower(location) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereOr("lower(title) LIKE ?", pattern).
				WhereOr("lower(description) LIKE ?", pattern)
		})
	}

	err := q.Order("date ASC").Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}
