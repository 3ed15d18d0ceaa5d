package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-parfum-store.git/internal/orders"
)

type OrderService interface {
	CreateOrder(ctx context.Context, in orders.CreateOrderInput) (orders.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) (orders.Order, error)
	GetOrder(ctx context.Context, orderID string) (orders.Order, error)
	GetOrderStatus(ctx context.Context, orderID string) (orders.Status, error)
	ListOrders(ctx context.Context, limit, offset int) ([]orders.Order, error)
}

type OrdersHandler struct {
	Svc OrderService
	Log *zap.Logger
}

// Register pasang route storefront.
func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getStatus)
}

// RegisterAdmin pasang route back-office (sudah di belakang session middleware).
func (h *OrdersHandler) RegisterAdmin(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Patch("/orders/{id}/status", h.updateStatus)
	r.Get("/order-statuses", h.listStatuses)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var in orders.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	ctx = orders.WithTraceID(ctx, middleware.GetReqID(r.Context()))

	o, err := h.Svc.CreateOrder(ctx, in)
	if err != nil {
		writeOrderError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		writeOrderError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getStatus buat polling storefront; service baca cache dulu sebelum DB.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	st, err := h.Svc.GetOrderStatus(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeOrderError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]orders.Status{"status": st})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	ctx = orders.WithTraceID(ctx, middleware.GetReqID(r.Context()))

	o, err := h.Svc.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeOrderError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	out, err := h.Svc.ListOrders(ctx, limit, offset)
	if err != nil {
		writeOrderError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) listStatuses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orders.AllStatuses)
}
