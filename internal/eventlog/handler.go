// Package eventlog consumes catalog events and writes them to the structured log.
package eventlog

import (
	"context"

	"github.com/ariefcatur/go-catalog-orders/internal/catalog"
	kafkax "github.com/ariefcatur/go-catalog-orders/internal/kafka"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// Deduper reports whether an event id is seen for the first time.
type Deduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
}

type Handler struct {
	Dedup Deduper // optional
	Log   zerolog.Logger
}

// Handle is installed as the consumer handler. Malformed messages are logged
// and committed so they do not block the partition.
func (h *Handler) Handle(ctx context.Context, m kafkago.Message) error {
	var env catalog.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		h.Log.Error().Err(err).Int("partition", m.Partition).Int64("offset", m.Offset).Msg("skipping malformed event")
		return nil
	}

	if h.Dedup != nil && env.EventID != "" {
		first, err := h.Dedup.FirstSeen(ctx, env.EventID)
		if err != nil {
			return err
		}
		if !first {
			h.Log.Debug().Str("event_id", env.EventID).Msg("duplicate event")
			return nil
		}
	}

	ev := h.Log.Info().
		Str("event_id", env.EventID).
		Str("event_type", env.EventType).
		Int("event_version", env.EventVersion).
		Str("producer", env.Producer).
		Str("aggregate_id", env.CorrelationID).
		Time("occurred_at", env.OccurredAt)

	switch env.EventType {
	case catalog.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[catalog.OrderCreatedPayload](env.Payload)
		if err != nil {
			return h.bad(env, err)
		}
		ev = ev.Str("customer", p.CustomerName).Int("items", len(p.Items)).Stringer("total", p.TotalAmount)
	case catalog.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[catalog.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return h.bad(env, err)
		}
		ev = ev.Stringer("status", p.Status)
	case catalog.EventOrderTotalRecalculated:
		p, err := kafkax.UnwrapPayload[catalog.OrderTotalRecalculatedPayload](env.Payload)
		if err != nil {
			return h.bad(env, err)
		}
		ev = ev.Stringer("total", p.TotalAmount).Str("reason", p.Reason)
	default:
		if len(env.Payload) > 0 {
			ev = ev.RawJSON("payload", env.Payload)
		}
	}
	ev.Msg("catalog event")
	return nil
}

func (h *Handler) bad(env catalog.Envelope, err error) error {
	h.Log.Error().Err(err).Str("event_id", env.EventID).Str("event_type", env.EventType).Msg("skipping malformed payload")
	return nil
}
