package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"travelnosql/internal/api"
	"travelnosql/internal/config"
	"travelnosql/internal/etl"
	"travelnosql/pkg/cache"
	"travelnosql/pkg/database"
	"travelnosql/pkg/logger"
	"travelnosql/pkg/metrics"
)

func runMigration(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log := logger.NewLogger()
	defer log.Sync()

	pg, err := database.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if sqlDB, err := pg.DB(); err == nil {
		defer sqlDB.Close()
	}

	client, err := database.ConnectMongo(cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(cfg.MongoDB)
	migrator := etl.NewMigrator(
		etl.NewPostgresReader(pg),
		etl.NewMongoWriter(db),
		etl.NewMongoSchemaManager(db),
		log,
		metrics.NewMetrics("travelnosql"),
	)

	fmt.Println("Starting migration to MongoDB...")
	summary, err := migrator.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Migration finished successfully.")
	fmt.Printf("  bookings:  %d documents\n", summary.Bookings)
	fmt.Printf("  flights:   %d documents\n", summary.Flights)
	fmt.Printf("  aircrafts: %d documents\n", summary.Aircrafts)
	fmt.Printf("  airports:  %d documents\n", summary.Airports)
	return nil
}

func runServe(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log := logger.NewLogger()
	defer log.Sync()

	pg, err := database.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if sqlDB, err := pg.DB(); err == nil {
		defer sqlDB.Close()
	}

	client, err := database.ConnectMongo(cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	m := metrics.NewMetrics("travelnosql")
	store := cache.New(cfg.RedisAddr, cfg.CacheTTL, log)
	defer store.Close()

	server := api.NewServer(pg, client.Database(cfg.MongoDB), store, log, m)
	app := server.App(cfg.ReadTimeout, cfg.WriteTimeout)

	// Prometheus and the liveness probe run on a separate listener.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
	metricsServer := &http.Server{
		Addr:         ":" + cfg.MetricsPort,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("metrics server listening", "port", cfg.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err)
		}
	}()

	go func() {
		log.Info("api server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("api server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("api shutdown failed", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics shutdown failed", "error", err)
	}
	return nil
}
