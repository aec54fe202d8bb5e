package tickets_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"eventhub/internal/models"
	"eventhub/internal/tickets"
)

// Mock implementations
type MockTicketDBLayer struct {
	mock.Mock
}

func (m *MockTicketDBLayer) UserExists(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketDBLayer) GetTicketsByUser(userID string) ([]models.Ticket, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockTicketDBLayer) GetTotalTicketsCount() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

// Tests start here
func TestGetTicketsByUser(t *testing.T) {
	mockDB := new(MockTicketDBLayer)
	svc := tickets.NewTicketService(mockDB)

	stored := []models.Ticket{
		{ID: "tkt_a", UserID: "user-1", EventID: "event-1", Type: "general", PurchasedAt: time.Now()},
		{ID: "tkt_b", UserID: "user-1", EventID: "event-2", Type: "vip", PurchasedAt: time.Now()},
	}
	mockDB.On("UserExists", "user-1").Return(true, nil)
	mockDB.On("GetTicketsByUser", "user-1").Return(stored, nil)

	result, err := svc.GetTicketsByUser("user-1")

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, "tkt_a", result[0].ID)
	mockDB.AssertExpectations(t)
}

func TestGetTicketsByUserEmptyHistory(t *testing.T) {
	mockDB := new(MockTicketDBLayer)
	svc := tickets.NewTicketService(mockDB)

	mockDB.On("UserExists", "user-1").Return(true, nil)
	mockDB.On("GetTicketsByUser", "user-1").Return([]models.Ticket{}, nil)

	result, err := svc.GetTicketsByUser("user-1")

	assert.NoError(t, err)
	assert.Empty(t, result)
}

func TestGetTicketsByUserUnknownUser(t *testing.T) {
	mockDB := new(MockTicketDBLayer)
	svc := tickets.NewTicketService(mockDB)

	mockDB.On("UserExists", "ghost").Return(false, nil)

	_, err := svc.GetTicketsByUser("ghost")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	mockDB.AssertNotCalled(t, "GetTicketsByUser", mock.Anything)
}

func TestGetTotalTicketsCount(t *testing.T) {
	mockDB := new(MockTicketDBLayer)
	svc := tickets.NewTicketService(mockDB)

	mockDB.On("GetTotalTicketsCount").Return(42, nil)

	count, err := svc.GetTotalTicketsCount()

	assert.NoError(t, err)
	assert.Equal(t, 42, count)
}
