package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/activityarchive/internal/archive"
	"example.com/activityarchive/internal/config"
	"example.com/activityarchive/internal/events"
	"example.com/activityarchive/internal/strava"
	"example.com/activityarchive/internal/syncer"
)

func main() {
	newer := flag.Bool("new", false, "fetch activities newer than the newest archived one")
	older := flag.Bool("older", false, "backfill activities older than the oldest archived one")
	limit := flag.Int("limit", 0, "number of new activity files to write (default: no limit)")
	force := flag.Bool("force", false, "overwrite activity files that already exist")
	pause := flag.Float64("sleep", 0, "seconds to sleep after each successful write")
	flag.Parse()

	var writeLimit *int
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "limit" {
			writeLimit = limit
		}
	})

	mode, err := syncer.ParseMode(*newer, *older)
	if err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := archive.Open(cfg.ArchiveDir)
	if err != nil {
		log.Fatalf("failed to open archive: %v", err)
	}

	client := strava.NewClient(strava.Config{
		APIURL:       cfg.StravaAPIURL,
		OAuthURL:     cfg.StravaOAuthURL,
		ClientID:     cfg.StravaClientID,
		ClientSecret: cfg.StravaClientSecret,
		TokenPath:    cfg.TokenPath,
		Timeout:      cfg.HTTPTimeout,
		PerPage:      cfg.StravaPerPage,
	})

	opts := []syncer.Option{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventsTopic)
		defer publisher.Close()
		opts = append(opts, syncer.WithPublisher(publisher))
	}

	summary, err := syncer.New(client, store, opts...).Run(ctx, syncer.Options{
		Mode:  mode,
		Limit: writeLimit,
		Force: *force,
		Pause: time.Duration(*pause * float64(time.Second)),
	})
	if err != nil {
		log.Fatalf("sync aborted after %s: %v", summary, err)
	}
}
