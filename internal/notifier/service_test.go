package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	kafkax "github.com/ariefcatur/go-parfum-store.git/internal/kafka"
	"github.com/ariefcatur/go-parfum-store.git/internal/orders"
	"github.com/ariefcatur/go-parfum-store.git/internal/redisx"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return &Service{
		Redis:       redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		Log:         zap.NewNop(),
		ServiceName: "notifier-test",
	}, mr
}

func statusChangedMessage(t *testing.T, eventID, orderID string, prev, cur orders.Status) kafkago.Message {
	t.Helper()
	env := orders.Envelope{
		EventID:       eventID,
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "parfum-api-test",
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderID: orderID, Previous: prev, Current: cur,
		}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandleStatusChangedRefreshesCache(t *testing.T) {
	svc, mr := newTestService(t)
	orderID := uuid.NewString()

	m := statusChangedMessage(t, uuid.NewString(), orderID, orders.StatusNew, orders.StatusPaid)
	require.NoError(t, svc.HandleStatusChanged(context.Background(), m))

	cached, err := mr.Get(fmt.Sprintf(redisx.KeyOrderStatus, orderID))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"PAID"}`, cached)
}

func TestHandleStatusChangedDedups(t *testing.T) {
	svc, mr := newTestService(t)
	orderID := uuid.NewString()
	eventID := uuid.NewString()

	m := statusChangedMessage(t, eventID, orderID, orders.StatusNew, orders.StatusPaid)
	require.NoError(t, svc.HandleStatusChanged(context.Background(), m))

	// cache dihapus; event ulang dengan event_id sama tidak boleh nulis lagi
	mr.Del(fmt.Sprintf(redisx.KeyOrderStatus, orderID))
	require.NoError(t, svc.HandleStatusChanged(context.Background(), m))
	assert.False(t, mr.Exists(fmt.Sprintf(redisx.KeyOrderStatus, orderID)))
}

func TestHandleStatusChangedBadPayloadNotMarkedSeen(t *testing.T) {
	svc, mr := newTestService(t)
	orderID := uuid.NewString()
	eventID := uuid.NewString()

	bad := statusChangedMessage(t, eventID, orderID, orders.StatusNew, orders.StatusPaid)
	var env orders.Envelope
	require.NoError(t, json.Unmarshal(bad.Value, &env))
	env.Payload = json.RawMessage(`"bukan-objek"`)
	bad.Value = kafkax.MustMarshal(env)

	require.Error(t, svc.HandleStatusChanged(context.Background(), bad))
	assert.False(t, mr.Exists(fmt.Sprintf(redisx.KeyDedup, svc.ServiceName, eventID)))

	// redelivery dengan payload benar masih harus diproses
	good := statusChangedMessage(t, eventID, orderID, orders.StatusNew, orders.StatusPaid)
	require.NoError(t, svc.HandleStatusChanged(context.Background(), good))

	cached, err := mr.Get(fmt.Sprintf(redisx.KeyOrderStatus, orderID))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"PAID"}`, cached)
}

func TestHandleOrderCreatedIgnoresOtherEvents(t *testing.T) {
	svc, mr := newTestService(t)
	orderID := uuid.NewString()

	m := statusChangedMessage(t, uuid.NewString(), orderID, orders.StatusNew, orders.StatusPaid)
	require.NoError(t, svc.HandleOrderCreated(context.Background(), m))
	assert.False(t, mr.Exists(fmt.Sprintf(redisx.KeyOrderStatus, orderID)))
}

func TestHandleOrderCreatedCachesInitialStatus(t *testing.T) {
	svc, mr := newTestService(t)
	orderID := uuid.NewString()

	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderID:    orderID,
			Number:     "01J8ZQ0FAKEULID0000000000",
			CustomerID: "cust-1",
			Status:     orders.StatusNew,
			Items:      []orders.ItemQty{{ProductID: uuid.NewString(), Qty: 2}},
			TotalCents: 12900,
		}),
	}
	m := kafkago.Message{Value: kafkax.MustMarshal(env)}
	require.NoError(t, svc.HandleOrderCreated(context.Background(), m))

	cached, err := mr.Get(fmt.Sprintf(redisx.KeyOrderStatus, orderID))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"NEW"}`, cached)
}
