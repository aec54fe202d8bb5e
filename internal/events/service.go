// Package events owns the catalog: records hosts create and attendees
// browse. The cart service reads events only to validate references and
// decrement inventory at purchase time.
package events

import (
	"errors"
	"fmt"
	"time"

	"eventhub/internal/models"
	"eventhub/internal/utils"
)

var (
	ErrNotFound     = errors.New("event not found")
	ErrInvalidInput = errors.New("invalid event input")
	ErrForbidden    = errors.New("forbidden")
)

type EventDBLayer interface {
	CreateEvent(event models.Event) error
	GetEventByID(id string) (*models.Event, error)
	UpdateEvent(event models.Event) error
	DeleteEvent(id string) error
	ListEvents(filter models.EventFilter) ([]models.Event, error)
}

type Service struct {
	DB EventDBLayer
}

func NewService(db EventDBLayer) *Service {
	return &Service{DB: db}
}

func validateEventInput(event models.Event) error {
	if event.Title == "" || event.Date == "" || event.Location == "" || event.Category == "" {
		return fmt.Errorf("%w: missing required fields: title, date, location, category", ErrInvalidInput)
	}
	if len(event.Title) > 100 {
		return fmt.Errorf("%w: title must be at most 100 characters", ErrInvalidInput)
	}
	if len(event.Description) > 1000 {
		return fmt.Errorf("%w: description must be at most 1000 characters", ErrInvalidInput)
	}
	if !models.ValidCategory(event.Category) {
		return fmt.Errorf("%w: invalid event category %q", ErrInvalidInput, event.Category)
	}
	if event.GeneralPrice < 0 || event.VipPrice < 0 {
		return fmt.Errorf("%w: prices cannot be negative", ErrInvalidInput)
	}
	if event.GeneralTickets < 0 || event.VipTickets < 0 {
		return fmt.Errorf("%w: ticket counts cannot be negative", ErrInvalidInput)
	}
	return nil
}

// Create registers a new event owned by hostID. The image field is an
// URL produced by the external upload pipeline; it is stored verbatim.
func (s *Service) Create(event models.Event, hostID string) (*models.Event, error) {
	if err := validateEventInput(event); err != nil {
		return nil, err
	}

	event.ID = utils.GenerateEventID()
	event.HostID = hostID
	event.CreatedAt = time.Now()
	if event.GeneralTickets == 0 {
		event.GeneralTickets = 100
	}
	if event.VipTickets == 0 {
		event.VipTickets = 20
	}

	if err := s.DB.CreateEvent(event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}

func (s *Service) Get(id string) (*models.Event, error) {
	event, err := s.DB.GetEventByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return event, nil
}

// Update replaces the mutable fields of an event. Only the owning host
// may update.
func (s *Service) Update(id string, update models.Event, callerID string) (*models.Event, error) {
	existing, err := s.DB.GetEventByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if existing.HostID != "" && existing.HostID != callerID {
		return nil, fmt.Errorf("%w: event %s belongs to another host", ErrForbidden, id)
	}
	if err := validateEventInput(update); err != nil {
		return nil, err
	}

	update.ID = existing.ID
	update.HostID = existing.HostID
	update.CreatedAt = existing.CreatedAt
	if err := s.DB.UpdateEvent(update); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return &update, nil
}

// Delete removes an event. Only the owning host may delete. Tickets
// already sold are purchase history and stay untouched.
func (s *Service) Delete(id string, callerID string) error {
	existing, err := s.DB.GetEventByID(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if existing.HostID != "" && existing.HostID != callerID {
		return fmt.Errorf("%w: event %s belongs to another host", ErrForbidden, id)
	}
	if err := s.DB.DeleteEvent(id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// List returns events matching the filter, soonest first.
func (s *Service) List(filter models.EventFilter) ([]models.Event, error) {
	list, err := s.DB.ListEvents(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return list, nil
}
