package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/activityarchive/internal/archive"
	"example.com/activityarchive/internal/config"
	"example.com/activityarchive/internal/csvexport"
	persistence "example.com/activityarchive/internal/persistence/postgres"
	"example.com/activityarchive/internal/strava"
)

func main() {
	incremental := flag.Bool("incremental", false, "merge activities listed from the API after the newest row instead of rebuilding from the archive")
	mirror := flag.Bool("mirror", false, "also sync the table into Postgres (POSTGRES_URL)")
	out := flag.String("out", "", "output CSV path (default DERIVED_CSV_PATH)")
	archiveDir := flag.String("archive", "", "archive directory (default ARCHIVE_DIR)")
	flag.Parse()

	cfg := config.Load()
	if *out != "" {
		cfg.DerivedCSVPath = *out
	}
	if *archiveDir != "" {
		cfg.ArchiveDir = *archiveDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []csvexport.Option
	if *mirror {
		if cfg.PostgresURL == "" {
			log.Fatal("-mirror requires POSTGRES_URL")
		}
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		repo := persistence.NewRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			log.Fatalf("failed to migrate postgres: %v", err)
		}
		opts = append(opts, csvexport.WithMirror(repo))
	}

	exporter := csvexport.NewExporter(cfg.DerivedCSVPath, cfg.Precision, opts...)

	var (
		res csvexport.Result
		err error
	)
	if *incremental {
		client := strava.NewClient(strava.Config{
			APIURL:       cfg.StravaAPIURL,
			OAuthURL:     cfg.StravaOAuthURL,
			ClientID:     cfg.StravaClientID,
			ClientSecret: cfg.StravaClientSecret,
			TokenPath:    cfg.TokenPath,
			Timeout:      cfg.HTTPTimeout,
			PerPage:      cfg.StravaPerPage,
		})
		res, err = exporter.Incremental(ctx, client)
	} else {
		res, err = exporter.FromArchive(ctx, archive.New(cfg.ArchiveDir))
	}
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}
	log.Printf("wrote %d rows to %s", res.Rows, res.Path)
}
