package analytics

import (
	"github.com/ariefcatur/espada-admin/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-05T10:00:00Z", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
		{"2024-03-05T12:00:00+02:00", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
		{"2024-03-05T10:00:00.123456", time.Date(2024, 3, 5, 10, 0, 0, 123456000, time.UTC)},
		{"2024-03-05 10:00:00.5+00", time.Date(2024, 3, 5, 10, 0, 0, 500000000, time.UTC)},
		{"2024-03-05 10:00:00", time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"not a date", time.Time{}},
		{"2024-02-30", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseTimestamp(tt.in)), "got %s", ParseTimestamp(tt.in))
		})
	}
}

const snapshotJSON = `{
  "products": [
    {"id": "p1", "name": "Espada Tee", "price": "35.00", "stock": 4, "category": "tops"},
    {"id": "p2", "name": "Espada Cap", "price": 20, "stock": 40, "category": "accessories"}
  ],
  "orders": [
    {"id": "o1", "customer_id": "c1", "total": "90.00", "status": "pending", "created_at": "2024-03-05T10:00:00Z"},
    {"id": "o2", "customer_id": "c2", "total": 20, "status": "delivered", "created_at": "garbage"}
  ],
  "orderItems": [
    {"id": "i1", "order_id": "o1", "product_id": "p1", "quantity": 2, "price": "35.00"},
    {"id": "i2", "order_id": "o1", "product_id": "p2", "quantity": 1, "price": "20"},
    {"id": "i3", "order_id": "o2", "product_id": "p2", "quantity": 1, "price": "20"}
  ]
}`

func TestLoadSnapshot(t *testing.T) {
	snap, err := LoadSnapshot(strings.NewReader(snapshotJSON))
	require.NoError(t, err)

	require.Len(t, snap.Products, 2)
	assert.Equal(t, "35", snap.Products[0].Price.String())
	require.Len(t, snap.Orders, 2)
	assert.Equal(t, orders.StatusPending, snap.Orders[0].Status)
	assert.False(t, snap.Orders[0].CreatedAt.IsZero())
	assert.True(t, snap.Orders[1].CreatedAt.IsZero())
	require.Len(t, snap.OrderItems, 3)

	res := Compute(snap.Products, snap.Orders, snap.OrderItems, dayRange("2024-03-01", "2024-03-31"))
	assert.Equal(t, 1, res.TotalOrders)
	assert.Equal(t, "90", res.TotalRevenue.String())
	assert.Equal(t, 1, res.LowStockProducts)
	require.Len(t, res.TopProducts, 2)
	assert.Equal(t, "Espada Tee", res.TopProducts[0].Name)
	assert.Equal(t, "70", res.TopProducts[0].Revenue.String())
	require.Len(t, res.RecentOrders, 1)
	assert.Equal(t, 2, res.RecentOrders[0].ItemCount)
}

func TestLoadSnapshotInvalidJSON(t *testing.T) {
	_, err := LoadSnapshot(strings.NewReader(`{"orders": [`))
	assert.Error(t, err)
}
