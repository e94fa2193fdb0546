package analytics

import (
	"context"
	"fmt"
	"github.com/ariefcatur/espada-admin/internal/orders"
	"golang.org/x/sync/errgroup"
	"time"
)

// Source loads the collections the aggregator works on. orders.Repo
// satisfies it.
type Source interface {
	ListProducts(ctx context.Context) ([]orders.Product, error)
	ListOrders(ctx context.Context, since time.Time) ([]orders.Order, error)
	ListOrderItems(ctx context.Context) ([]orders.OrderItem, error)
}

type Service struct {
	Source Source
}

// Analytics loads products, orders (from the start of the previous window)
// and all order items in parallel, then aggregates them.
func (s *Service) Analytics(ctx context.Context, tr TimeRange) (Result, error) {
	var (
		products []orders.Product
		all      []orders.Order
		items    []orders.OrderItem
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if products, err = s.Source.ListProducts(ctx); err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if all, err = s.Source.ListOrders(ctx, tr.PreviousFrom()); err != nil {
			return fmt.Errorf("load orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if items, err = s.Source.ListOrderItems(ctx); err != nil {
			return fmt.Errorf("load order items: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return Compute(products, all, items, tr), nil
}
