package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vectile/internal/config"
	"vectile/internal/db"
	"vectile/internal/geomstore"
	"vectile/internal/httpapi"
	"vectile/internal/metrics"
	"vectile/internal/mvtenc"
	"vectile/internal/probe"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger := httpapi.NewLogger("info")
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := httpapi.NewLogger(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to warehouse")
	}
	defer pool.Close()

	m := metrics.New()
	m.SetWarehouseUp(true)

	store := geomstore.New(logger, pool, geomstore.Options{
		Table:        cfg.Table,
		GeomColumn:   cfg.GeomColumn,
		QueryTimeout: cfg.QueryTimeout.Std(),
	}, m)
	fetcher := geomstore.NewRetrier(logger, store, cfg.RetryAttempts, cfg.RetryBackoff.Std())

	encoder := mvtenc.New(mvtenc.Options{
		LayerName: cfg.LayerName,
		Extent:    cfg.Extent,
	})

	prober := probe.New(logger, pool, probe.Options{Interval: cfg.ProbeInterval.Std()}, m)
	go prober.Run(ctx)

	h := httpapi.NewHandler(logger, fetcher, encoder, pool, m, cfg.FeatureCap)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("dataset", cfg.Table+"."+cfg.GeomColumn).
			Int("feature_cap", cfg.FeatureCap).
			Msg("vectile listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info().Msg("shutdown complete")
}
