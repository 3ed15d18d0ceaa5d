package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/ariefcatur/go-parfum-store.git/internal/kafka"
	"github.com/ariefcatur/go-parfum-store.git/internal/orders"
	"github.com/ariefcatur/go-parfum-store.git/internal/redisx"
)

// Service konsumsi event order: refresh cache status + log notifikasi
// (pengganti email pelanggan di demo ini).
type Service struct {
	Redis       *redis.Client
	Log         *zap.Logger
	ServiceName string
}

// HandleOrderCreated dipasang sebagai handler consumer order.created.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCreated {
		return nil // ignore
	}

	// decode dulu baru tandai seen: payload rusak jangan keburu
	// dianggap terproses, redelivery masih dapat kesempatan.
	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		return err
	}
	if dup, err := s.seen(ctx, env.EventID); err != nil || dup {
		return err
	}

	s.cacheStatus(ctx, p.OrderID, p.Status)
	s.Log.Info("order placed notification",
		zap.String("order_id", p.OrderID),
		zap.String("number", p.Number),
		zap.String("customer_id", p.CustomerID),
		zap.Int("total_cents", p.TotalCents),
		zap.Int("item_lines", len(p.Items)),
	)
	return nil
}

// HandleStatusChanged dipasang sebagai handler consumer order.status_changed.
func (s *Service) HandleStatusChanged(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderStatusChanged {
		return nil // ignore
	}

	p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		return err
	}
	if dup, err := s.seen(ctx, env.EventID); err != nil || dup {
		return err
	}

	s.cacheStatus(ctx, p.OrderID, p.Current)
	s.Log.Info("order status notification",
		zap.String("order_id", p.OrderID),
		zap.String("previous", string(p.Previous)),
		zap.String("current", string(p.Current)),
	)
	return nil
}

// seen: dedup via redis pakai event_id; event ulang bukan error.
func (s *Service) seen(ctx context.Context, eventID string) (bool, error) {
	key := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, eventID)
	ok, err := s.Redis.SetNX(ctx, key, "1", redisx.TTLDedup).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (s *Service) cacheStatus(ctx context.Context, orderID string, st orders.Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	val := fmt.Sprintf(`{"status":%q}`, st)
	if err := s.Redis.Set(ctx, key, val, redisx.TTLStatusCache).Err(); err != nil {
		s.Log.Warn("status cache set failed", zap.String("order_id", orderID), zap.Error(err))
	}
}
