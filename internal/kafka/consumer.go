package kafka

import (
	"context"
	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"sync"
	"time"
)

// Handler harus return nil hanya jika proses sukses & boleh commit offset.
// Error akan di-retry di tempat (dengan backoff) sampai sukses.
type Handler func(ctx context.Context, m kafka.Message) error

// reader is the part of *kafka.Reader the consumer needs.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r          reader
	workers    int
	retryMin   time.Duration
	retryMax   time.Duration
	queueDepth int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return newConsumer(r, workers)
}

func newConsumer(r reader, workers int) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		r:          r,
		workers:    workers,
		retryMin:   200 * time.Millisecond,
		retryMax:   10 * time.Second,
		queueDepth: 128,
	}
}

// workerFor keeps every message with the same key on one worker, so one
// order's events are handled in the order they were produced.
func (c *Consumer) workerFor(key []byte) int {
	return int(xxhash.Sum64(key) % uint64(c.workers))
}

// Start fetches until ctx is cancelled. Offsets are committed only once
// every earlier message of the same partition has been handled.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	tracker := newCommitTracker()
	queues := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan kafka.Message, c.queueDepth)
		wg.Add(1)
		go func(id int, jobs <-chan kafka.Message) {
			defer wg.Done()
			for m := range jobs {
				if !c.handle(ctx, id, h, m) {
					return // ctx selesai; sisa pesan tidak di-commit
				}
				if err := tracker.complete(ctx, c.r, m); err != nil && ctx.Err() == nil {
					log.Error().Err(err).Int("worker", id).Int64("offset", m.Offset).Msg("commit failed")
				}
			}
		}(i, queues[i])
	}
	stop := func() {
		for _, q := range queues {
			close(q)
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
		tracker.track(m)
		select {
		case queues[c.workerFor(m.Key)] <- m:
		case <-ctx.Done():
			stop()
			return nil
		}
	}
}

// handle retries h with exponential backoff. It returns false only when
// ctx ends before h succeeds.
func (c *Consumer) handle(ctx context.Context, id int, h Handler, m kafka.Message) bool {
	backoff := c.retryMin
	for attempt := 1; ; attempt++ {
		err := h(ctx, m)
		if err == nil {
			return true
		}
		log.Warn().Err(err).
			Int("worker", id).
			Int("partition", m.Partition).
			Int64("offset", m.Offset).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("handler failed, retrying")

		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > c.retryMax {
			backoff = c.retryMax
		}
	}
}

type partitionOffsets struct {
	pending []int64 // fetched, urut offset
	done    map[int64]bool
}

// commitTracker commits the highest offset per partition below which every
// fetched message is done.
type commitTracker struct {
	mu    sync.Mutex
	parts map[int]*partitionOffsets
}

func newCommitTracker() *commitTracker {
	return &commitTracker{parts: map[int]*partitionOffsets{}}
}

func (t *commitTracker) track(m kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.parts[m.Partition]
	if !ok {
		p = &partitionOffsets{done: map[int64]bool{}}
		t.parts[m.Partition] = p
	}
	p.pending = append(p.pending, m.Offset)
}

// complete marks m handled and commits the contiguous prefix, if any.
// Commits run under the lock so they reach the broker in offset order.
func (t *commitTracker) complete(ctx context.Context, r reader, m kafka.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.parts[m.Partition]
	if !ok {
		return nil
	}
	p.done[m.Offset] = true

	last := int64(-1)
	for len(p.pending) > 0 && p.done[p.pending[0]] {
		last = p.pending[0]
		delete(p.done, last)
		p.pending = p.pending[1:]
	}
	if last < 0 {
		return nil
	}
	return r.CommitMessages(ctx, kafka.Message{Topic: m.Topic, Partition: m.Partition, Offset: last})
}
