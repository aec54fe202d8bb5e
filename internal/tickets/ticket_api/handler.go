package ticket_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"eventhub/internal/logger"
	"eventhub/internal/tickets"
	"eventhub/internal/utils"
)

type Handler struct {
	TicketService *tickets.TicketService
	Logger        *logger.Logger
}

func NewHandler(ticketService *tickets.TicketService, log *logger.Logger) *Handler {
	return &Handler{TicketService: ticketService, Logger: log}
}

// GetTickets handles GET /users/{userId}/tickets.
func (h *Handler) GetTickets(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	ticketList, err := h.TicketService.GetTicketsByUser(userID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetTickets: %v", err))
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		h.writeJSON(w, status, utils.ErrorResponse("Failed to fetch tickets", err.Error()))
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Tickets fetched",
		map[string]interface{}{"tickets": ticketList}))
}

// TicketCountResponse is the response format for the public ticket
// count endpoint.
type TicketCountResponse struct {
	TotalCount int `json:"total_count"`
}

// GetTotalTicketsCount handles GET /tickets/count.
func (h *Handler) GetTotalTicketsCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.TicketService.GetTotalTicketsCount()
	if err != nil {
		http.Error(w, "Error retrieving ticket count: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, TicketCountResponse{TotalCount: count})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}
