package cart

import (
	"errors"
	"fmt"
	"time"

	"eventhub/internal/models"
	"eventhub/internal/utils"
)

// DBLayer is the persistence surface the cart service needs. The bun
// implementation lives in cart/db; tests substitute a mock.
type DBLayer interface {
	UserExists(userID string) (bool, error)
	EventExists(eventID string) (bool, error)
	GetCartItems(userID string) ([]models.CartItem, error)
	AddCartItem(item models.CartItem) error
	// RemoveOneCartItem deletes at most one line matching the key and
	// reports whether a line was removed.
	RemoveOneCartItem(userID, eventID, ticketType string) (bool, error)
	// RemoveCartItems deletes every line matching the key.
	RemoveCartItems(userID, eventID, ticketType string) (int, error)
	// PurchaseTransfer atomically deletes the given cart rows, inserts
	// the tickets, and decrements event inventory. On any failure
	// nothing is applied.
	PurchaseTransfer(userID string, itemIDs []int64, tickets []models.Ticket) error
}

// UserLock serializes mutations per user so that two concurrent
// requests for the same cart cannot interleave.
type UserLock interface {
	LockUser(userID string) (bool, error)
	UnlockUser(userID string) error
}

// Publisher streams cart and purchase lifecycle events to Kafka.
// Publish failures are logged by the caller, never surfaced.
type Publisher interface {
	PublishCartUpdated(userID string, cart []models.CartItem) error
	PublishTicketsPurchased(userID string, tickets []models.Ticket) error
}

// QRGenerator stamps each purchased ticket with a scannable code.
type QRGenerator interface {
	Generate(ticket models.Ticket) ([]byte, error)
}

// Broadcaster fans purchase notices out to live SSE subscribers.
type Broadcaster interface {
	Broadcast(notice models.PurchaseNotice)
}

type Service struct {
	DB    DBLayer
	Lock  UserLock
	Kafka Publisher
	QR    QRGenerator
	SSE   Broadcaster
}

func NewService(db DBLayer, lock UserLock, kafka Publisher, qr QRGenerator, sse Broadcaster) *Service {
	return &Service{DB: db, Lock: lock, Kafka: kafka, QR: qr, SSE: sse}
}

// lockAttempts bounds how long a mutation waits for the per-user lock
// before reporting a write conflict.
const lockAttempts = 5

func (s *Service) withUserLock(userID string, fn func() error) error {
	if s.Lock == nil {
		return fn()
	}
	var acquired bool
	var err error
	for i := 0; i < lockAttempts; i++ {
		acquired, err = s.Lock.LockUser(userID)
		if err != nil {
			return fmt.Errorf("%w: cart lock: %v", ErrPersistence, err)
		}
		if acquired {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if !acquired {
		return fmt.Errorf("%w: cart busy for user %s", ErrPersistence, userID)
	}
	defer s.Lock.UnlockUser(userID)
	return fn()
}

func (s *Service) validateLineInput(eventID, ticketType string) error {
	if eventID == "" {
		return fmt.Errorf("%w: eventId is required", ErrInvalidArgument)
	}
	if !models.ValidTicketType(ticketType) {
		return fmt.Errorf("%w: ticket type must be %q or %q", ErrInvalidArgument,
			models.TicketTypeGeneral, models.TicketTypeVIP)
	}
	return nil
}

func (s *Service) requireUser(userID string) error {
	exists, err := s.DB.UserExists(userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !exists {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return nil
}

// AddLine appends exactly one line to the user's cart. Calling it twice
// yields two lines; that is how quantity 2 is represented.
func (s *Service) AddLine(userID, eventID, ticketType string) ([]models.CartItem, error) {
	if err := s.validateLineInput(eventID, ticketType); err != nil {
		return nil, err
	}
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	exists, err := s.DB.EventExists(eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: event %s", ErrNotFound, eventID)
	}

	var cartItems []models.CartItem
	err = s.withUserLock(userID, func() error {
		if err := s.DB.AddCartItem(models.CartItem{
			UserID:     userID,
			EventID:    eventID,
			TicketType: ticketType,
		}); err != nil {
			return fmt.Errorf("%w: add cart item: %v", ErrPersistence, err)
		}
		cartItems, err = s.DB.GetCartItems(userID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishCart(userID, cartItems)
	return cartItems, nil
}

// IncreaseLine is AddLine under the name the cart-item PATCH action
// uses, kept for symmetry with DecreaseLine.
func (s *Service) IncreaseLine(userID, eventID, ticketType string) ([]models.CartItem, error) {
	return s.AddLine(userID, eventID, ticketType)
}

// DecreaseLine removes at most one line matching the key. A decrease on
// a key with no matching lines is reported as NotFound.
func (s *Service) DecreaseLine(userID, eventID, ticketType string) ([]models.CartItem, error) {
	if err := s.validateLineInput(eventID, ticketType); err != nil {
		return nil, err
	}
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	var cartItems []models.CartItem
	err := s.withUserLock(userID, func() error {
		removed, err := s.DB.RemoveOneCartItem(userID, eventID, ticketType)
		if err != nil {
			return fmt.Errorf("%w: remove cart item: %v", ErrPersistence, err)
		}
		if !removed {
			return fmt.Errorf("%w: no cart line for event %s type %s", ErrNotFound, eventID, ticketType)
		}
		cartItems, err = s.DB.GetCartItems(userID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishCart(userID, cartItems)
	return cartItems, nil
}

// RemoveLine deletes every line matching the key in one call. Removing
// a key that is not present succeeds and leaves the cart unchanged.
func (s *Service) RemoveLine(userID, eventID, ticketType string) ([]models.CartItem, error) {
	if err := s.validateLineInput(eventID, ticketType); err != nil {
		return nil, err
	}
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	var cartItems []models.CartItem
	err := s.withUserLock(userID, func() error {
		if _, err := s.DB.RemoveCartItems(userID, eventID, ticketType); err != nil {
			return fmt.Errorf("%w: remove cart items: %v", ErrPersistence, err)
		}
		var err error
		cartItems, err = s.DB.GetCartItems(userID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishCart(userID, cartItems)
	return cartItems, nil
}

// GetCart returns the raw line sequence in insertion order.
func (s *Service) GetCart(userID string) ([]models.CartItem, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	items, err := s.DB.GetCartItems(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return items, nil
}

// PurchaseAll converts every cart line into a ticket and clears the
// cart. If any line is invalid the whole call is rejected and nothing
// is created. An empty cart purchases successfully and changes nothing.
func (s *Service) PurchaseAll(userID string) ([]models.Ticket, error) {
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	var tickets []models.Ticket
	err := s.withUserLock(userID, func() error {
		items, err := s.DB.GetCartItems(userID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if len(items) == 0 {
			return nil
		}

		for _, item := range items {
			if item.EventID == "" || !models.ValidTicketType(item.TicketType) {
				return fmt.Errorf("%w: cart contains an invalid line (event %q, type %q)",
					ErrInvalidArgument, item.EventID, item.TicketType)
			}
		}

		tickets, err = s.transfer(userID, items)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishPurchase(userID, tickets)
	return tickets, nil
}

// PurchaseSingle converts exactly quantity lines matching the key into
// tickets. If fewer matching lines exist, nothing is created.
func (s *Service) PurchaseSingle(userID, eventID, ticketType string, quantity int) ([]models.Ticket, error) {
	if err := s.validateLineInput(eventID, ticketType); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidArgument)
	}
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}

	var tickets []models.Ticket
	err := s.withUserLock(userID, func() error {
		items, err := s.DB.GetCartItems(userID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}

		matching := make([]models.CartItem, 0, quantity)
		for _, item := range items {
			if item.EventID == eventID && item.TicketType == ticketType {
				matching = append(matching, item)
			}
		}
		if len(matching) < quantity {
			return fmt.Errorf("%w: requested %d, cart holds %d", ErrInsufficientCartQuantity,
				quantity, len(matching))
		}

		tickets, err = s.transfer(userID, matching[:quantity])
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishPurchase(userID, tickets)
	return tickets, nil
}

// transfer stamps tickets for the given lines and applies the
// cart-to-ticket move as one transaction. purchasedAt is set here, once
// per ticket, never taken from the caller.
func (s *Service) transfer(userID string, items []models.CartItem) ([]models.Ticket, error) {
	now := time.Now()
	itemIDs := make([]int64, 0, len(items))
	tickets := make([]models.Ticket, 0, len(items))

	for _, item := range items {
		ticket := models.Ticket{
			ID:          utils.GenerateTicketID(),
			UserID:      userID,
			EventID:     item.EventID,
			Type:        item.TicketType,
			PurchasedAt: now,
		}
		if s.QR != nil {
			code, err := s.QR.Generate(ticket)
			if err != nil {
				return nil, fmt.Errorf("%w: generate qr: %v", ErrPersistence, err)
			}
			ticket.QRCode = code
		}
		itemIDs = append(itemIDs, item.ID)
		tickets = append(tickets, ticket)
	}

	if err := s.DB.PurchaseTransfer(userID, itemIDs, tickets); err != nil {
		if errors.Is(err, ErrInsufficientInventory) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: purchase transfer: %v", ErrPersistence, err)
	}
	return tickets, nil
}

func (s *Service) publishCart(userID string, cartItems []models.CartItem) {
	if s.Kafka == nil {
		return
	}
	if err := s.Kafka.PublishCartUpdated(userID, cartItems); err != nil {
		fmt.Printf("Kafka publish error (cart updated): %v\n", err)
	}
}

func (s *Service) publishPurchase(userID string, tickets []models.Ticket) {
	if len(tickets) == 0 {
		return
	}
	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketsPurchased(userID, tickets); err != nil {
			fmt.Printf("Kafka publish error (tickets purchased): %v\n", err)
		}
	}
	if s.SSE != nil {
		for _, t := range tickets {
			s.SSE.Broadcast(models.PurchaseNotice{
				UserID:      t.UserID,
				EventID:     t.EventID,
				TicketID:    t.ID,
				Type:        t.Type,
				PurchasedAt: t.PurchasedAt,
			})
		}
	}
}
