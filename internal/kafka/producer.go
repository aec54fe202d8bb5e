package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"eventhub/internal/models"
)

type Producer struct {
	Writer      *kafka.Writer
	CartTopic   string
	TicketTopic string
}

func NewProducer(brokers []string, cartTopic, ticketTopic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
	})
	return &Producer{
		Writer:      writer,
		CartTopic:   cartTopic,
		TicketTopic: ticketTopic,
	}
}

type cartUpdatedEvent struct {
	UserID    string            `json:"user_id"`
	Cart      []models.CartItem `json:"cart"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type ticketsPurchasedEvent struct {
	UserID  string          `json:"user_id"`
	Tickets []ticketPayload `json:"tickets"`
}

// ticketPayload strips the QR bytes; downstream consumers only need
// identity fields.
type ticketPayload struct {
	TicketID    string    `json:"ticket_id"`
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// PublishCartUpdated streams the new cart state after a mutation.
func (p *Producer) PublishCartUpdated(userID string, cart []models.CartItem) error {
	msgBytes, err := json.Marshal(cartUpdatedEvent{
		UserID:    userID,
		Cart:      cart,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: p.CartTopic,
			Key:   []byte(userID),
			Value: msgBytes,
		},
	)
}

// PublishTicketsPurchased streams the tickets minted by a purchase.
func (p *Producer) PublishTicketsPurchased(userID string, tickets []models.Ticket) error {
	payload := ticketsPurchasedEvent{UserID: userID}
	for _, t := range tickets {
		payload.Tickets = append(payload.Tickets, ticketPayload{
			TicketID:    t.ID,
			EventID:     t.EventID,
			Type:        t.Type,
			PurchasedAt: t.PurchasedAt,
		})
	}

	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: p.TicketTopic,
			Key:   []byte(userID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
