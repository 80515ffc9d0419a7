package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"example.com/activityarchive/internal/config"
	"example.com/activityarchive/internal/strava"
)

func main() {
	code := flag.String("code", "", "authorization code from the redirect; prints the authorization URL when empty")
	flag.Parse()

	cfg := config.Load()
	if cfg.StravaClientID == 0 || cfg.StravaClientSecret == "" {
		log.Fatal("STRAVA_CLIENT_ID and STRAVA_CLIENT_SECRET must be set")
	}

	client := strava.NewClient(strava.Config{
		APIURL:       cfg.StravaAPIURL,
		OAuthURL:     cfg.StravaOAuthURL,
		ClientID:     cfg.StravaClientID,
		ClientSecret: cfg.StravaClientSecret,
		RedirectURI:  cfg.StravaRedirectURI,
		TokenPath:    cfg.TokenPath,
		Timeout:      cfg.HTTPTimeout,
	})
	oauth := client.OAuth()

	if *code == "" {
		fmt.Println("Open this URL, approve access, then rerun with -code=<code> from the redirect:")
		fmt.Println(oauth.AuthorizationURL(cfg.StravaRedirectURI))
		return
	}

	tok, err := oauth.ExchangeCode(context.Background(), *code)
	if err != nil {
		log.Fatalf("code exchange failed: %v", err)
	}
	if err := strava.SaveToken(cfg.TokenPath, tok); err != nil {
		log.Fatalf("failed to save token: %v", err)
	}
	log.Printf("saved token to %s (expires %s)", cfg.TokenPath, time.Unix(tok.ExpiresAt, 0).UTC().Format(time.RFC3339))
}
