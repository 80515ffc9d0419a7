package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"example.com/activityarchive/internal/archive"
)

// ErrMissingToken is returned when the token file has not been created yet.
var ErrMissingToken = errors.New("token file not found; run the authorize command first")

const readAllScope = "activity:read_all"

// Token is the OAuth token pair persisted in token.json.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// Expired reports whether the access token is no longer valid at now.
func (t Token) Expired(now time.Time) bool {
	return t.ExpiresAt != 0 && t.ExpiresAt < now.Unix()
}

func (t Token) oauth2Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if t.ExpiresAt != 0 {
		tok.Expiry = time.Unix(t.ExpiresAt, 0)
	}
	return tok
}

// tokenFromOAuth2 keeps Strava's absolute expires_at when the token endpoint
// returned one and falls back to the expiry derived from expires_in.
func tokenFromOAuth2(tok *oauth2.Token) Token {
	out := Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    tok.ExpiresIn,
	}
	if at, ok := unixExtra(tok.Extra("expires_at")); ok {
		out.ExpiresAt = at
	} else if !tok.Expiry.IsZero() {
		out.ExpiresAt = tok.Expiry.Unix()
	}
	return out
}

func unixExtra(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// LoadToken reads a token file.
func LoadToken(path string) (Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Token{}, fmt.Errorf("%w: %s", ErrMissingToken, path)
	}
	if err != nil {
		return Token{}, err
	}
	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return Token{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return tok, nil
}

// SaveToken writes tok to path atomically.
func SaveToken(path string, tok Token) error {
	body, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return archive.WriteFileAtomic(path, append(body, '\n'))
}

// fileTokenSource loads token.json on first use and writes it back whenever
// the underlying source hands out a refreshed access token.
type fileTokenSource struct {
	mu    sync.Mutex
	ctx   context.Context
	path  string
	conf  *oauth2.Config
	src   oauth2.TokenSource
	saved string
}

func (s *fileTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.src == nil {
		tok, err := LoadToken(s.path)
		if err != nil {
			return nil, err
		}
		s.saved = tok.AccessToken
		s.src = s.conf.TokenSource(s.ctx, tok.oauth2Token())
	}

	tok, err := s.src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if tok.AccessToken != s.saved {
		if err := SaveToken(s.path, tokenFromOAuth2(tok)); err != nil {
			return nil, fmt.Errorf("persist refreshed token: %w", err)
		}
		s.saved = tok.AccessToken
	}
	return tok, nil
}

// OAuth performs the authorization-code grant against the Strava endpoints.
type OAuth struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

func newOAuth(baseURL, clientID, clientSecret, redirectURI string, httpClient *http.Client) *OAuth {
	return &OAuth{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{readAllScope},
			Endpoint: oauth2.Endpoint{
				AuthURL:   baseURL + "/oauth/authorize",
				TokenURL:  baseURL + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
	}
}

func (o *OAuth) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
}

// AuthorizationURL returns the URL the user opens once to grant read access
// to all activities.
func (o *OAuth) AuthorizationURL(redirectURI string) string {
	conf := *o.conf
	if redirectURI != "" {
		conf.RedirectURL = redirectURI
	}
	return conf.AuthCodeURL("", oauth2.SetAuthURLParam("approval_prompt", "force"))
}

// ExchangeCode trades a one-time authorization code for a token pair.
func (o *OAuth) ExchangeCode(ctx context.Context, code string) (Token, error) {
	tok, err := o.conf.Exchange(o.context(ctx), code)
	if err != nil {
		return Token{}, fmt.Errorf("oauth exchange: %w", err)
	}
	return tokenFromOAuth2(tok), nil
}

func formatClientID(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}
