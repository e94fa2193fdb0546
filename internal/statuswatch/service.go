package statuswatch

import (
	"context"
	"encoding/json"
	"fmt"
	kafkax "github.com/ariefcatur/espada-admin/internal/kafka"
	"github.com/ariefcatur/espada-admin/internal/orders"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"
	"time"
)

type Deduper interface {
	MarkSeen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type StatusCache interface {
	Set(ctx context.Context, orderID string, st orders.Status, at time.Time) error
}

// Service keeps the order status cache in line with status-change events,
// including changes made by other instances of the admin API.
type Service struct {
	Dedup Deduper
	Cache StatusCache
}

// HandleStatusChanged dipasang sebagai handler consumer.
func (s *Service) HandleStatusChanged(ctx context.Context, m kafkago.Message) error {
	if t := kafkax.HeaderValue(m, kafkax.HeaderEventType); t != "" && t != orders.EventOrderStatusChanged {
		return nil
	}

	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// poison message: log and commit so the partition keeps moving
		log.Error().Err(err).Int64("offset", m.Offset).Msg("statuswatch: bad envelope")
		return nil
	}
	if env.EventType != orders.EventOrderStatusChanged {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		log.Error().Err(err).Str("event_id", env.EventID).Msg("statuswatch: bad payload")
		return nil
	}

	fresh, err := s.Dedup.MarkSeen(ctx, env.EventID)
	if err != nil {
		return fmt.Errorf("dedup %s: %w", env.EventID, err)
	}
	if !fresh {
		log.Debug().Str("event_id", env.EventID).Msg("statuswatch: duplicate event")
		return nil
	}

	at := p.At
	if at.IsZero() {
		at = env.OccurredAt
	}
	if err := s.Cache.Set(ctx, p.OrderID, p.To, at); err != nil {
		// consumer retries this message; drop the key so the retry is not seen as a duplicate
		if ferr := s.Dedup.Forget(ctx, env.EventID); ferr != nil {
			log.Warn().Err(ferr).Str("event_id", env.EventID).Msg("statuswatch: forget dedup key")
		}
		return fmt.Errorf("cache status %s: %w", p.OrderID, err)
	}
	log.Info().Str("order_id", p.OrderID).Str("from", string(p.From)).Str("to", string(p.To)).Msg("status cache refreshed")
	return nil
}
