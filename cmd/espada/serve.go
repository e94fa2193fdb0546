package main

import (
	"context"
	"errors"
	"github.com/ariefcatur/espada-admin/internal/analytics"
	"github.com/ariefcatur/espada-admin/internal/httpx"
	kafkax "github.com/ariefcatur/espada-admin/internal/kafka"
	"github.com/ariefcatur/espada-admin/internal/orders"
	"github.com/ariefcatur/espada-admin/internal/postgres"
	"github.com/ariefcatur/espada-admin/internal/redisx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin HTTP API",
	RunE:  serve,
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	prod.Start(ctx)

	repo := &orders.Repo{DB: db}
	router := httpx.NewRouter(cfg.CORSOrigins)
	ah := &httpx.AnalyticsHandler{
		Service:     &analytics.Service{Source: repo},
		DefaultDays: cfg.DefaultDays,
	}
	ah.Register(router)
	oh := &httpx.OrdersHandler{
		Repo:     repo,
		Cache:    &redisx.StatusCache{RDB: rdb},
		Producer: prod,
		Service:  cfg.ServiceName,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
	case err := <-errCh:
		prod.Close()
		prod.WaitClosed()
		return err
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
	return nil
}
