package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Joshithach18/ecommerce-backend/internal/order"
)

// OrderPublisher emits a notification after an order has been persisted.
// A nil publisher disables publishing; a publish failure never fails the
// request.
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, o *order.Order) error
}

type OrderHandler struct {
	repo      order.Repository
	publisher OrderPublisher
	logger    *log.Logger
}

func NewOrderHandler(repo order.Repository, publisher OrderPublisher, logger *log.Logger) *OrderHandler {
	return &OrderHandler{repo: repo, publisher: publisher, logger: logger}
}

type createOrderRequest struct {
	UserID      string              `json:"user_id"`
	Items       []order.ItemRequest `json:"items"`
	UserAddress map[string]any      `json:"user_address"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	o, err := h.repo.Create(r.Context(), req.UserID, req.Items, req.UserAddress)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishOrderCreated(r.Context(), &o); err != nil {
			h.logger.Printf("publish OrderCreated for %s: %v", o.ID, err)
		}
	}

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	q := r.URL.Query()
	page := order.DefaultPage()
	var ok bool
	if page.Limit, ok = intParam(w, q.Get("limit"), "limit", page.Limit); !ok {
		return
	}
	if page.Offset, ok = intParam(w, q.Get("offset"), "offset", page.Offset); !ok {
		return
	}

	orders, err := h.repo.ListByUser(r.Context(), userID, page)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}
