package redisx

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Idempotency remembers which order a client-supplied key produced.
type Idempotency struct{ RDB *redis.Client }

// Lookup returns the order id stored for key, if any.
func (i *Idempotency) Lookup(ctx context.Context, key string) (int64, bool, error) {
	v, err := i.RDB.Get(ctx, fmt.Sprintf(KeyIdemOrderCreate, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency value %q: %w", v, err)
	}
	return id, true, nil
}

// Remember stores orderID under key unless another request got there first.
func (i *Idempotency) Remember(ctx context.Context, key string, orderID int64) error {
	return i.RDB.SetNX(ctx, fmt.Sprintf(KeyIdemOrderCreate, key), orderID, TTLIdempotency).Err()
}

// Dedup marks events as handled per consumer name.
type Dedup struct {
	RDB      *redis.Client
	Consumer string
}

// FirstSeen records eventID and reports whether this is its first delivery.
func (d *Dedup) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	return d.RDB.SetNX(ctx, fmt.Sprintf(KeyDedup, d.Consumer, eventID), "1", TTLDedup).Result()
}
