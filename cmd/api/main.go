package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/activityarchive/internal/api"
	"example.com/activityarchive/internal/archive"
	"example.com/activityarchive/internal/auth"
	"example.com/activityarchive/internal/config"
	httptransport "example.com/activityarchive/internal/transport/http"
)

func main() {
	issue := flag.String("issue-token", "", "print a read token for the given subject and exit")
	ttl := flag.Duration("token-ttl", 24*time.Hour, "lifetime of tokens printed by -issue-token")
	flag.Parse()

	cfg := config.Load()
	authCfg := auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}

	if *issue != "" {
		token, err := auth.Sign(authCfg, *issue, []string{auth.ScopeArchiveRead}, *ttl, time.Now())
		if err != nil {
			log.Fatalf("failed to sign token: %v", err)
		}
		fmt.Println(token)
		return
	}

	store := archive.New(cfg.ArchiveDir)
	if err := store.RequireDir(); err != nil {
		log.Printf("warning: %v; listings will be empty until the first sync", err)
	}

	handler := api.NewHandler(store, cfg.Precision)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Basic request logger
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("%s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	var root http.Handler = logger(mux)
	if authCfg.Enabled() {
		root = auth.NewMiddleware(authCfg).Wrap(root)
	} else {
		log.Print("warning: JWT_SECRET is empty; the API is unauthenticated")
	}

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), root)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("activity-archive api listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
