package analytics

import (
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/espada-admin/internal/orders"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"io"
	"strings"
	"time"
)

// Snapshot holds the three collections Compute needs, e.g. an export of the
// storefront tables.
type Snapshot struct {
	Products   []orders.Product
	Orders     []orders.Order
	OrderItems []orders.OrderItem
}

type rawOrder struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	CreatedAt  string          `json:"created_at"`
}

type rawSnapshot struct {
	Products   []orders.Product   `json:"products"`
	Orders     []rawOrder         `json:"orders"`
	OrderItems []orders.OrderItem `json:"orderItems"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	dateLayout,
}

// ParseTimestamp accepts the formats the storefront has been seen to emit.
// Anything else yields the zero time, which Compute leaves out of every
// window.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func LoadSnapshot(r io.Reader) (Snapshot, error) {
	var raw rawSnapshot
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := Snapshot{
		Products:   raw.Products,
		Orders:     make([]orders.Order, 0, len(raw.Orders)),
		OrderItems: raw.OrderItems,
	}
	for _, o := range raw.Orders {
		created := ParseTimestamp(o.CreatedAt)
		if created.IsZero() {
			log.Debug().Str("order_id", o.ID).Str("created_at", o.CreatedAt).Msg("snapshot: unparsable created_at")
		}
		snap.Orders = append(snap.Orders, orders.Order{
			ID:         o.ID,
			CustomerID: o.CustomerID,
			Total:      o.Total,
			Status:     orders.Status(o.Status),
			CreatedAt:  created,
		})
	}
	return snap, nil
}
