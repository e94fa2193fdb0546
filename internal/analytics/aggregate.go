package analytics

import (
	"github.com/ariefcatur/espada-admin/internal/orders"
	"github.com/shopspring/decimal"
	"sort"
	"time"
)

const (
	// LowStockThreshold is fixed; products strictly below it count as low.
	LowStockThreshold = 10

	topLimit = 10
)

var hundred = decimal.NewFromInt(100)

// Compute builds the dashboard result from already loaded collections.
// It does no I/O and keeps no state, so concurrent calls are safe.
//
// Orders with a zero CreatedAt never match any window or bucket.
func Compute(products []orders.Product, all []orders.Order, items []orders.OrderItem, tr TimeRange) Result {
	from, to := tr.From.UTC(), tr.To.UTC()
	prevFrom := tr.PreviousFrom().UTC()

	var current, previous []orders.Order
	for _, o := range all {
		if o.CreatedAt.IsZero() {
			continue
		}
		switch {
		case !o.CreatedAt.Before(from) && !o.CreatedAt.After(to):
			current = append(current, o)
		case !o.CreatedAt.Before(prevFrom) && o.CreatedAt.Before(from):
			previous = append(previous, o)
		}
	}

	res := Result{
		TimeRange:          TimeRange{From: from, To: to, Days: tr.Days},
		TotalProducts:      len(products),
		TotalOrders:        len(current),
		StatusDistribution: map[string]int{},
		RevenueByStatus:    map[string]decimal.Decimal{},
	}

	for _, p := range products {
		if p.Stock < LowStockThreshold {
			res.LowStockProducts++
		}
	}

	customers := map[string]struct{}{}
	revenue := decimal.Zero
	for _, o := range current {
		revenue = revenue.Add(o.Total)
		if o.Status == orders.StatusPending {
			res.PendingOrders++
		}
		customers[o.CustomerID] = struct{}{}

		st := string(o.Status)
		res.StatusDistribution[st]++
		res.RevenueByStatus[st] = res.RevenueByStatus[st].Add(o.Total)
	}
	res.TotalRevenue = revenue
	res.UniqueCustomers = len(customers)

	prevCustomers := map[string]struct{}{}
	prevRevenue := decimal.Zero
	for _, o := range previous {
		prevRevenue = prevRevenue.Add(o.Total)
		prevCustomers[o.CustomerID] = struct{}{}
	}
	res.NewCustomers = len(customers) - len(prevCustomers)

	res.AverageOrderValue = safeDiv(revenue, len(current))
	res.AvgCustomerLifetimeValue = safeDiv(revenue, len(customers))
	prevAOV := safeDiv(prevRevenue, len(previous))

	res.RevenueChange = changePct(revenue, prevRevenue)
	res.OrdersChange = changePctInt(len(current), len(previous))
	res.AOVChange = changePct(res.AverageOrderValue, prevAOV)

	res.DailyRevenue = dailySeries(current, from, to)
	res.WeeklyRevenue = weeklySeries(current)
	res.MonthlyRevenue = monthlySeries(current)
	res.TopProducts = topProducts(products, current, items)
	res.RecentOrders = recentOrders(current, items)
	return res
}

func safeDiv(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

// changePct reports 0 when there is nothing to compare against, so growth
// from an empty previous period shows as 0%, never as infinity.
func changePct(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(hundred).InexactFloat64()
}

func changePctInt(current, previous int) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weekStart(t time.Time) time.Time {
	day := startOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// dailySeries is dense: every date between from and to has a point.
func dailySeries(current []orders.Order, from, to time.Time) []DailyPoint {
	out := []DailyPoint{}
	index := map[string]int{}
	for d := startOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		index[key] = len(out)
		out = append(out, DailyPoint{Date: key, Revenue: decimal.Zero})
	}
	for _, o := range current {
		i, ok := index[o.CreatedAt.UTC().Format(dateLayout)]
		if !ok {
			continue
		}
		out[i].Revenue = out[i].Revenue.Add(o.Total)
		out[i].Orders++
	}
	return out
}

// weeklySeries and monthlySeries are sparse: only buckets that saw an order.
func weeklySeries(current []orders.Order) []WeeklyPoint {
	buckets := map[string]*WeeklyPoint{}
	for _, o := range current {
		key := weekStart(o.CreatedAt).Format(dateLayout)
		b, ok := buckets[key]
		if !ok {
			b = &WeeklyPoint{Week: key, Revenue: decimal.Zero}
			buckets[key] = b
		}
		b.Revenue = b.Revenue.Add(o.Total)
		b.Orders++
	}
	out := make([]WeeklyPoint, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

func monthlySeries(current []orders.Order) []MonthlyPoint {
	buckets := map[string]*MonthlyPoint{}
	for _, o := range current {
		key := o.CreatedAt.UTC().Format(monthLayout)
		b, ok := buckets[key]
		if !ok {
			b = &MonthlyPoint{Month: key, Revenue: decimal.Zero}
			buckets[key] = b
		}
		b.Revenue = b.Revenue.Add(o.Total)
		b.Orders++
	}
	out := make([]MonthlyPoint, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// topProducts ranks by quantity sold in the window. Ties keep the order in
// which products first appear in items.
func topProducts(products []orders.Product, current []orders.Order, items []orders.OrderItem) []TopProduct {
	inRange := make(map[string]struct{}, len(current))
	for _, o := range current {
		inRange[o.ID] = struct{}{}
	}
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	index := map[string]int{}
	out := []TopProduct{}
	for _, it := range items {
		if _, ok := inRange[it.OrderID]; !ok {
			continue
		}
		i, ok := index[it.ProductID]
		if !ok {
			i = len(out)
			index[it.ProductID] = i
			out = append(out, TopProduct{ProductID: it.ProductID, Name: names[it.ProductID], Revenue: decimal.Zero})
		}
		out[i].Quantity += it.Quantity
		out[i].Revenue = out[i].Revenue.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	if len(out) > topLimit {
		out = out[:topLimit]
	}
	return out
}

// recentOrders counts items across the whole item list, not just the window.
func recentOrders(current []orders.Order, items []orders.OrderItem) []RecentOrder {
	counts := map[string]int{}
	for _, it := range items {
		counts[it.OrderID]++
	}

	sorted := make([]orders.Order, len(current))
	copy(sorted, current)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if len(sorted) > topLimit {
		sorted = sorted[:topLimit]
	}

	out := make([]RecentOrder, 0, len(sorted))
	for _, o := range sorted {
		out = append(out, RecentOrder{
			ID:         o.ID,
			CustomerID: o.CustomerID,
			Total:      o.Total,
			Status:     string(o.Status),
			CreatedAt:  o.CreatedAt,
			ItemCount:  counts[o.ID],
		})
	}
	return out
}
