package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateUserID returns a new random ID for a user record.
func GenerateUserID() string {
	return uuid.New().String()
}

// GenerateEventID returns a new random ID for an event record.
func GenerateEventID() string {
	return uuid.New().String()
}

// GenerateTicketID returns a prefixed, time-ordered ticket ID so that
// tickets sort by issue time in plain listings.
func GenerateTicketID() string {
	return fmt.Sprintf("tkt_%d_%s", time.Now().Unix(), uuid.New().String()[:8])
}
