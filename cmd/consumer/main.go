package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"example.com/activityarchive/internal/archive"
	"example.com/activityarchive/internal/config"
	"example.com/activityarchive/internal/consumer"
	"example.com/activityarchive/internal/csvexport"
	persistence "example.com/activityarchive/internal/persistence/postgres"
	"example.com/activityarchive/internal/report"
	httptransport "example.com/activityarchive/internal/transport/http"
)

func main() {
	cfg := config.Load()
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS must be set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var exportOpts []csvexport.Option
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		repo := persistence.NewRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			log.Fatalf("failed to migrate postgres: %v", err)
		}
		exportOpts = append(exportOpts, csvexport.WithMirror(repo))
	}

	store := archive.New(cfg.ArchiveDir)
	exporter := csvexport.NewExporter(cfg.DerivedCSVPath, cfg.Precision, exportOpts...)
	handler := consumer.NewRebuildHandler(store, exporter, report.Paths{
		RunsByMonth: cfg.RunsLogPath(),
		Activities:  cfg.ActivityLogPath(),
		Runs:        cfg.FlatRunsLogPath(),
	}, nil)
	if store.RequireDir() == nil {
		if err := handler.Rebuild(ctx); err != nil {
			log.Printf("initial rebuild failed: %v", err)
		}
	}

	metricsSrv := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.MetricsAddress), promhttp.Handler())

	go func() {
		log.Printf("consumer metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         cfg.KafkaBrokers,
		GroupID:         cfg.ConsumerGroupID,
		Topic:           cfg.EventsTopic,
		MinBytes:        1,
		MaxBytes:        10e6,
		CommitInterval:  time.Second,
		RetentionTime:   24 * time.Hour,
		ReadLagInterval: -1,
	})
	proc := consumer.NewProcessor(reader, handler)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer reader.Close()

		log.Printf("consumer started (topic=%s, group=%s)", cfg.EventsTopic, cfg.ConsumerGroupID)
		if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("consumer stopped with error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	log.Println("consumer shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}

	<-done
}
