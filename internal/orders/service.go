package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/ariefcatur/go-parfum-store.git/internal/kafka"
	"github.com/ariefcatur/go-parfum-store.git/internal/redisx"
)

// Store dipisah interface supaya service bisa diuji tanpa Postgres.
type Store interface {
	CreateOrderTx(ctx context.Context, customerID string, items []ItemInput) (Order, error)
	UpdateStatusTx(ctx context.Context, orderID string, next Status) (Order, Status, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	GetOrderStatus(ctx context.Context, orderID string) (Status, error)
	ListOrders(ctx context.Context, limit, offset int) ([]Order, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Store       Store
	Producer    Publisher // topic order.created
	StatusProd  Publisher // topic order.status_changed
	Redis       *redis.Client
	Log         *zap.Logger
	ServiceName string
}

type CreateOrderInput struct {
	CustomerID string      `json:"customer_id"`
	Items      []ItemInput `json:"items"`
}

func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (Order, error) {
	if in.CustomerID == "" {
		return Order{}, fmt.Errorf("%w: customer_id is required", ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return Order{}, fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}
	for _, it := range in.Items {
		if it.ProductID == "" {
			return Order{}, fmt.Errorf("%w: item product_id is required", ErrInvalidInput)
		}
		if _, err := uuid.Parse(it.ProductID); err != nil {
			return Order{}, fmt.Errorf("%w: item product_id is not a valid id", ErrInvalidInput)
		}
		if it.Qty <= 0 {
			return Order{}, fmt.Errorf("%w: item qty must be positive", ErrInvalidInput)
		}
	}

	o, err := s.Store.CreateOrderTx(ctx, in.CustomerID, mergeItems(in.Items))
	if err != nil {
		return Order{}, err
	}

	s.cacheStatus(ctx, o.ID, o.Status)
	s.publishCreated(ctx, o)
	return o, nil
}

func (s *Service) UpdateStatus(ctx context.Context, orderID, status string) (Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return Order{}, fmt.Errorf("%w: order id is not a valid id", ErrInvalidInput)
	}
	next := Status(status)
	if !next.Valid() {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	o, prev, err := s.Store.UpdateStatusTx(ctx, orderID, next)
	if err != nil {
		return Order{}, err
	}

	s.cacheStatus(ctx, o.ID, o.Status)
	s.publishStatusChanged(ctx, o, prev)
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return Order{}, ErrOrderNotFound
	}
	return s.Store.GetOrder(ctx, orderID)
}

// GetOrderStatus jalur cepat buat polling status: coba cache dulu,
// miss baru ke DB dan isi ulang cache.
func (s *Service) GetOrderStatus(ctx context.Context, orderID string) (Status, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return "", ErrOrderNotFound
	}

	if s.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		if raw, err := s.Redis.Get(ctx, key).Result(); err == nil && raw != "" {
			var body struct {
				Status Status `json:"status"`
			}
			if json.Unmarshal([]byte(raw), &body) == nil && body.Status != "" {
				return body.Status, nil
			}
		}
	}

	st, err := s.Store.GetOrderStatus(ctx, orderID)
	if err != nil {
		return "", err
	}
	s.cacheStatus(ctx, orderID, st)
	return st, nil
}

func (s *Service) ListOrders(ctx context.Context, limit, offset int) ([]Order, error) {
	return s.Store.ListOrders(ctx, limit, offset)
}

// mergeItems gabung line item dengan product_id sama; kalau dibiarkan
// terpisah, cek stok per baris bisa lolos padahal totalnya kelebihan.
func mergeItems(items []ItemInput) []ItemInput {
	idx := make(map[string]int, len(items))
	out := make([]ItemInput, 0, len(items))
	for _, it := range items {
		if i, ok := idx[it.ProductID]; ok {
			out[i].Qty += it.Qty
			continue
		}
		idx[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}

func (s *Service) cacheStatus(ctx context.Context, orderID string, st Status) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	val := fmt.Sprintf(`{"status":%q}`, st)
	if err := s.Redis.Set(ctx, key, val, redisx.TTLStatusCache).Err(); err != nil && s.Log != nil {
		s.Log.Warn("status cache set failed", zap.String("order_id", orderID), zap.Error(err))
	}
}

func (s *Service) publishCreated(ctx context.Context, o Order) {
	if s.Producer == nil {
		return
	}
	items := make([]ItemQty, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemQty{ProductID: it.ProductID, Qty: it.Qty})
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       traceID(ctx),
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(OrderCreatedPayload{
			OrderID:    o.ID,
			Number:     o.Number,
			CustomerID: o.CustomerID,
			Status:     o.Status,
			Items:      items,
			TotalCents: o.TotalCents,
		}),
	}
	s.Producer.Publish(PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) publishStatusChanged(ctx context.Context, o Order, prev Status) {
	if s.StatusProd == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       traceID(ctx),
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(OrderStatusChangedPayload{
			OrderID:  o.ID,
			Previous: prev,
			Current:  o.Status,
		}),
	}
	s.StatusProd.Publish(PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

type traceKey struct{}

// WithTraceID simpan request id dari middleware buat dibawa ke event.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func traceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceKey{}).(string); ok {
		return v
	}
	return ""
}
