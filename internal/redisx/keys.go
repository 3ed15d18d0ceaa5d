package redisx

import "time"

const (
	// Cache status order: order_status:{order_id} -> {"status":"..."}
	KeyOrderStatus = "order_status:%s"

	// Session admin: sess:admin:{token} -> admin_id
	KeySessionAdmin = "sess:admin:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
