package analytics

import (
	"github.com/shopspring/decimal"
	"time"
)

// Result is the dashboard payload. Field names are the JSON contract the
// admin charts read.
type Result struct {
	TimeRange TimeRange `json:"timeRange"`

	TotalProducts    int             `json:"totalProducts"`
	TotalOrders      int             `json:"totalOrders"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	PendingOrders    int             `json:"pendingOrders"`
	LowStockProducts int             `json:"lowStockProducts"`
	UniqueCustomers  int             `json:"uniqueCustomers"`
	NewCustomers     int             `json:"newCustomers"`

	AverageOrderValue        decimal.Decimal `json:"averageOrderValue"`
	AvgCustomerLifetimeValue decimal.Decimal `json:"avgCustomerLifetimeValue"`

	RevenueChange float64 `json:"revenueChange"`
	OrdersChange  float64 `json:"ordersChange"`
	AOVChange     float64 `json:"aovChange"`

	DailyRevenue   []DailyPoint   `json:"dailyRevenue"`
	WeeklyRevenue  []WeeklyPoint  `json:"weeklyRevenue"`
	MonthlyRevenue []MonthlyPoint `json:"monthlyRevenue"`

	TopProducts  []TopProduct  `json:"topProducts"`
	RecentOrders []RecentOrder `json:"recentOrders"`

	StatusDistribution map[string]int             `json:"statusDistribution"`
	RevenueByStatus    map[string]decimal.Decimal `json:"revenueByStatus"`
}

type DailyPoint struct {
	Date    string          `json:"date"` // YYYY-MM-DD
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type WeeklyPoint struct {
	Week    string          `json:"week"` // Sunday the week starts on
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type MonthlyPoint struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type TopProduct struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type RecentOrder struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customerId"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	ItemCount  int             `json:"itemCount"`
}
