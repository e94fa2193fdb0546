package orders

import (
	"github.com/shopspring/decimal"
	"time"
)

type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Category string          `json:"category"`
}

// Order as stored by the storefront. A zero CreatedAt means the timestamp
// was missing or could not be parsed.
type Order struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Total      decimal.Decimal `json:"total"`
	Status     Status          `json:"status"` // lihat status.go
	CreatedAt  time.Time       `json:"created_at"`
}

type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}
