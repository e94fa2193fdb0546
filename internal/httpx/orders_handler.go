package httpx

import (
	"context"
	"encoding/json"
	"errors"
	kafkax "github.com/ariefcatur/espada-admin/internal/kafka"
	"github.com/ariefcatur/espada-admin/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"
	"net/http"
	"time"
)

type OrderStore interface {
	ListProducts(ctx context.Context) ([]orders.Product, error)
	GetOrderStatus(ctx context.Context, orderID string) (orders.Status, error)
	UpdateStatus(ctx context.Context, orderID string, to orders.Status) (orders.Status, error)
}

type StatusCache interface {
	Get(ctx context.Context, orderID string) (orders.Status, bool, error)
	Set(ctx context.Context, orderID string, st orders.Status, at time.Time) error
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Repo     OrderStore
	Cache    StatusCache
	Producer Publisher
	Service  string
}

type UpdateStatusReq struct {
	Status string `json:"status"`
}

type UpdateStatusResp struct {
	OrderID string        `json:"order_id"`
	From    orders.Status `json:"from"`
	Status  orders.Status `json:"status"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/admin/products", h.listProducts)
	r.Get("/admin/orders/{id}/status", h.getStatus)
	r.Patch("/admin/orders/{id}/status", h.updateStatus)
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.ListProducts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list products")
		writeError(w, http.StatusInternalServerError, "failed to load products")
		return
	}
	if ps == nil {
		ps = []orders.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	if st, ok, err := h.Cache.Get(ctx, orderID); err == nil && ok {
		writeJSON(w, http.StatusOK, map[string]any{"order_id": orderID, "status": st})
		return
	} else if err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("status cache read")
	}

	// 2) fallback DB
	st, err := h.Repo.GetOrderStatus(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("get order status")
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if err := h.Cache.Set(ctx, orderID, st, time.Now()); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("status cache write")
	}
	writeJSON(w, http.StatusOK, map[string]any{"order_id": orderID, "status": st})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req UpdateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	to, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	from, err := h.Repo.UpdateStatus(ctx, orderID, to)
	switch {
	case errors.Is(err, orders.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
		return
	case errors.Is(err, orders.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Str("order_id", orderID).Msg("update order status")
		writeError(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	now := time.Now().UTC()
	if err := h.Cache.Set(ctx, orderID, to, now); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("status cache write")
	}

	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    now,
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(orders.OrderStatusChangedPayload{OrderID: orderID, From: from, To: to, At: now}),
	}
	h.Producer.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkax.EventHeaders(orders.EventOrderStatusChanged, ev.EventVersion)...)

	log.Info().Str("order_id", orderID).Str("from", string(from)).Str("to", string(to)).Msg("order status updated")
	writeJSON(w, http.StatusOK, UpdateStatusResp{OrderID: orderID, From: from, Status: to})
}
