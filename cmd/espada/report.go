package main

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/espada-admin/internal/analytics"
	"github.com/ariefcatur/espada-admin/internal/orders"
	"github.com/ariefcatur/espada-admin/internal/postgres"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"net/url"
	"os"
	"strconv"
	"time"
)

var (
	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Print dashboard analytics as JSON",
		Long: "Computes the analytics payload for a time range, either from the database\n" +
			"or from a snapshot file holding products, orders and orderItems.",
		RunE: report,
	}

	reportFrom  string
	reportTo    string
	reportDays  int
	reportInput string
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true

	reportCmd.Flags().StringVar(&reportFrom, "from", "", "range start, YYYY-MM-DD or RFC3339")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "range end, YYYY-MM-DD or RFC3339")
	reportCmd.Flags().IntVar(&reportDays, "days", 0, "range length ending now, used when from/to are empty")
	reportCmd.Flags().StringVarP(&reportInput, "input", "i", "", "snapshot JSON file instead of the database")
}

func report(cmd *cobra.Command, args []string) error {
	q := url.Values{}
	if reportFrom != "" {
		q.Set("from", reportFrom)
	}
	if reportTo != "" {
		q.Set("to", reportTo)
	}
	if reportDays > 0 {
		q.Set("days", strconv.Itoa(reportDays))
	}
	tr, err := analytics.ParseRange(q, time.Now(), cfg.DefaultDays)
	if err != nil {
		return err
	}

	var res analytics.Result
	if reportInput != "" {
		f, err := os.Open(reportInput)
		if err != nil {
			return err
		}
		defer f.Close()
		snap, err := analytics.LoadSnapshot(f)
		if err != nil {
			return fmt.Errorf("%s: %w", reportInput, err)
		}
		res = analytics.Compute(snap.Products, snap.Orders, snap.OrderItems, tr)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
		if err != nil {
			return err
		}
		defer db.Close()
		svc := &analytics.Service{Source: &orders.Repo{DB: db}}
		if res, err = svc.Analytics(ctx, tr); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
