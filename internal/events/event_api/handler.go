package event_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventhub/internal/auth"
	"eventhub/internal/events"
	"eventhub/internal/logger"
	"eventhub/internal/models"
	"eventhub/internal/sse"
	"eventhub/internal/utils"
)

type Handler struct {
	EventService *events.Service
	Emitter      *sse.PurchaseEventEmitter
	Logger       *logger.Logger
}

func NewHandler(eventService *events.Service, emitter *sse.PurchaseEventEmitter, log *logger.Logger) *Handler {
	return &Handler{EventService: eventService, Emitter: emitter, Logger: log}
}

// ListEvents handles GET /events with optional date/location/search/
// category query filters.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := models.EventFilter{
		FromDate: r.URL.Query().Get("date"),
		Location: r.URL.Query().Get("location"),
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}

	list, err := h.EventService.List(filter)
	if err != nil {
		h.writeError(w, "ListEvents", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Events fetched",
		map[string]interface{}{"events": list}))
}

// GetEvent handles GET /events/{eventId}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.EventService.Get(eventID)
	if err != nil {
		h.writeError(w, "GetEvent", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Event fetched",
		map[string]interface{}{"event": event}))
}

// CreateEvent handles POST /events. Host only; enforced by middleware,
// ownership recorded here.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var event models.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	created, err := h.EventService.Create(event, auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, "CreateEvent", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateEvent: %s (%s)", created.Title, created.ID))
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("Event created",
		map[string]interface{}{"event": created}))
}

// UpdateEvent handles PUT /events/{eventId}.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var event models.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	updated, err := h.EventService.Update(eventID, event, auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, "UpdateEvent", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Event updated",
		map[string]interface{}{"event": updated}))
}

// DeleteEvent handles DELETE /events/{eventId}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	if err := h.EventService.Delete(eventID, auth.UserID(r.Context())); err != nil {
		h.writeError(w, "DeleteEvent", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Event deleted successfully", nil))
}

// StreamPurchases handles GET /events/{eventId}/purchases/stream,
// pushing one SSE message per ticket sold for the event.
func (h *Handler) StreamPurchases(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	if _, err := h.EventService.Get(eventID); err != nil {
		h.writeError(w, "StreamPurchases", err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	notices := h.Emitter.SubscribeToEvent(r.Context(), eventID)
	h.Logger.Info("SSE", fmt.Sprintf("client subscribed to purchases for event %s", eventID))

	for notice := range notices {
		data, err := json.Marshal(notice)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: purchase\ndata: %s\n\n", data)
		flusher.Flush()
	}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, events.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, events.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, events.ErrForbidden):
		status = http.StatusForbidden
	}
	h.writeJSON(w, status, utils.ErrorResponse("Request failed", err.Error()))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}
