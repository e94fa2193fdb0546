package main

import (
	"context"
	kafkax "github.com/ariefcatur/espada-admin/internal/kafka"
	"github.com/ariefcatur/espada-admin/internal/orders"
	"github.com/ariefcatur/espada-admin/internal/redisx"
	"github.com/ariefcatur/espada-admin/internal/statuswatch"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume order status events and refresh the status cache",
	RunE:  runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &statuswatch.Service{
		Dedup: &redisx.Dedup{RDB: rdb, Service: cfg.ServiceName + "-statuswatch"},
		Cache: &redisx.StatusCache{RDB: rdb},
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, orders.TopicOrderStatusChanged, cfg.WorkerCount)

	done := make(chan error, 1)
	go func() {
		log.Info().
			Str("group", cfg.WorkerGroup).
			Str("topic", orders.TopicOrderStatusChanged).
			Int("workers", cfg.WorkerCount).
			Msg("status consumer started")
		done <- cons.Start(ctx, svc.HandleStatusChanged)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Info().Msg("shutting down consumer...")
		cancel()
		return <-done
	case err := <-done:
		return err
	}
}
