package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Handler returns nil only when the message was processed and its offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

// committer is the part of *kafka.Reader a worker needs.
type committer interface {
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

const (
	retryBase = 200 * time.Millisecond
	retryMax  = 10 * time.Second
)

type Consumer struct {
	r       *kafka.Reader
	workers int
	log     zerolog.Logger
}

func NewConsumer(brokers []string, group, topic string, workers int, log zerolog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		r:       r,
		workers: workers,
		log:     log.With().Str("component", "kafka-consumer").Str("topic", topic).Str("group", group).Logger(),
	}
}

// Start fetches messages and fans them out to the workers until ctx ends.
// A partition always goes to the same worker, so its offsets are committed
// in order. It returns nil on cancellation and the read error otherwise.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range jobs {
		jobs[i] = make(chan kafka.Message, 128)
		wg.Add(1)
		go func(in <-chan kafka.Message) {
			defer wg.Done()
			c.work(ctx, in, h, c.r)
		}(jobs[i])
	}
	stop := func() {
		for _, ch := range jobs {
			close(ch)
		}
		wg.Wait()
	}

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			stop()
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case jobs[slot(m.Partition, c.workers)] <- m:
		case <-ctx.Done():
			stop()
			return nil
		}
	}
}

// work handles messages in arrival order. A failing message is retried with
// backoff until it succeeds or ctx ends, and later messages of the same
// partition wait behind it. On cancellation nothing more is committed and the
// group resumes from the last committed offset.
func (c *Consumer) work(ctx context.Context, in <-chan kafka.Message, h Handler, cm committer) {
	for m := range in {
		if ctx.Err() != nil {
			continue // drain
		}
		if !c.handle(ctx, m, h) {
			continue
		}
		if err := cm.CommitMessages(ctx, m); err != nil {
			// the next commit on this partition covers this offset too
			c.log.Error().Err(err).Int("partition", m.Partition).Int64("offset", m.Offset).Msg("commit failed")
		}
	}
}

// handle reports whether m was processed.
func (c *Consumer) handle(ctx context.Context, m kafka.Message, h Handler) bool {
	wait := retryBase
	for attempt := 1; ; attempt++ {
		err := h(ctx, m)
		if err == nil {
			return true
		}
		c.log.Error().Err(err).
			Int("partition", m.Partition).
			Int64("offset", m.Offset).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("handler failed")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}
		wait = min(wait*2, retryMax)
	}
}

func slot(partition, workers int) int {
	if partition < 0 {
		partition = -partition
	}
	return partition % workers
}
