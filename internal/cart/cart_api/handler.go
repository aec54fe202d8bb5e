package cart_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventhub/internal/cart"
	"eventhub/internal/logger"
	"eventhub/internal/models"
	"eventhub/internal/utils"
)

type Handler struct {
	CartService *cart.Service
	Logger      *logger.Logger
}

func NewHandler(cartService *cart.Service, log *logger.Logger) *Handler {
	return &Handler{CartService: cartService, Logger: log}
}

// cartPayload wraps the raw line sequence with its grouped projection.
// Grouping is computed here on every read, never stored.
type cartPayload struct {
	Cart    []models.CartItem      `json:"cart"`
	Grouped []models.CartLineGroup `json:"grouped"`
}

func newCartPayload(items []models.CartItem) cartPayload {
	return cartPayload{Cart: items, Grouped: models.GroupCartItems(items)}
}

// AddToCart handles POST /users/{userId}/cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req models.CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	items, err := h.CartService.AddLine(userID, req.EventID, req.TicketType)
	if err != nil {
		h.writeServiceError(w, "AddToCart", err)
		return
	}

	h.Logger.LogCart("ADD", userID, fmt.Sprintf("event=%s type=%s", req.EventID, req.TicketType))
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Item added to cart", newCartPayload(items)))
}

// GetCart handles GET /users/{userId}/cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	items, err := h.CartService.GetCart(userID)
	if err != nil {
		h.writeServiceError(w, "GetCart", err)
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Cart fetched", newCartPayload(items)))
}

// UpdateCartItem handles PATCH /users/{userId}/cart-item with an
// increase or decrease action.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req models.CartUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var items []models.CartItem
	var err error
	switch req.Action {
	case "increase":
		items, err = h.CartService.IncreaseLine(userID, req.EventID, req.TicketType)
	case "decrease":
		items, err = h.CartService.DecreaseLine(userID, req.EventID, req.TicketType)
	default:
		h.writeError(w, http.StatusBadRequest, "Invalid action",
			fmt.Errorf("action must be 'increase' or 'decrease', got %q", req.Action))
		return
	}
	if err != nil {
		h.writeServiceError(w, "UpdateCartItem", err)
		return
	}

	h.Logger.LogCart(req.Action, userID, fmt.Sprintf("event=%s type=%s", req.EventID, req.TicketType))
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Cart updated", newCartPayload(items)))
}

// RemoveCartItem handles DELETE /users/{userId}/cart-item. All lines
// matching the key are removed in one call.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req models.CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	items, err := h.CartService.RemoveLine(userID, req.EventID, req.TicketType)
	if err != nil {
		h.writeServiceError(w, "RemoveCartItem", err)
		return
	}

	h.Logger.LogCart("REMOVE", userID, fmt.Sprintf("event=%s type=%s", req.EventID, req.TicketType))
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Item removed from cart", newCartPayload(items)))
}

// PurchaseAll handles POST /users/{userId}/purchase.
func (h *Handler) PurchaseAll(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	tickets, err := h.CartService.PurchaseAll(userID)
	if err != nil {
		h.writeServiceError(w, "PurchaseAll", err)
		return
	}

	h.Logger.LogPurchase(userID, fmt.Sprintf("purchased %d tickets", len(tickets)))
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Purchase complete",
		map[string]interface{}{"tickets": tickets}))
}

// PurchaseSingle handles POST /users/{userId}/purchase-single.
func (h *Handler) PurchaseSingle(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req models.PurchaseSingleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tickets, err := h.CartService.PurchaseSingle(userID, req.EventID, req.TicketType, req.Quantity)
	if err != nil {
		h.writeServiceError(w, "PurchaseSingle", err)
		return
	}

	h.Logger.LogPurchase(userID, fmt.Sprintf("purchased %d %s tickets for event %s",
		req.Quantity, req.TicketType, req.EventID))
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse(
		fmt.Sprintf("Purchased %d tickets successfully", req.Quantity),
		map[string]interface{}{"tickets": tickets}))
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, cart.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, cart.ErrInvalidArgument),
		errors.Is(err, cart.ErrInsufficientCartQuantity),
		errors.Is(err, cart.ErrInsufficientInventory):
		status = http.StatusBadRequest
	}
	h.writeJSON(w, status, utils.ErrorResponse("Request failed", err.Error()))
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	h.Logger.Error("API", fmt.Sprintf("%s: %v", message, err))
	h.writeJSON(w, status, utils.ErrorResponse(message, err.Error()))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}
