package redisx

import "time"

const (
	// Idempotency create order: idem:order:create:{Idempotency-Key header} -> order_id
	KeyIdemOrderCreate = "idem:order:create:%s"

	// Dedup event processing: dedup:{consumer}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
