// Package strava is a minimal client for the Strava v3 activities API with
// transparent token refresh.
package strava

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"example.com/activityarchive/internal/domain"
)

const defaultPerPage = 100

var (
	// ErrUnauthorized is returned when the API rejects the access token.
	ErrUnauthorized = errors.New("strava: unauthorized")
	// ErrNotFound is returned when an activity does not exist upstream.
	ErrNotFound = errors.New("strava: activity not found")
)

// Config holds the endpoints and credentials of the client.
type Config struct {
	APIURL       string
	OAuthURL     string
	ClientID     int
	ClientSecret string
	RedirectURI  string
	TokenPath    string
	Timeout      time.Duration
	PerPage      int
}

// Client implements domain.ActivityFeed against the Strava API.
type Client struct {
	apiURL     string
	httpClient *http.Client
	oauth      *OAuth
	perPage    int
}

// NewClient constructs a Client with sane defaults.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base := &http.Client{Timeout: timeout}
	oauth := newOAuth(strings.TrimRight(cfg.OAuthURL, "/"), formatClientID(cfg.ClientID), cfg.ClientSecret, cfg.RedirectURI, base)

	// Refreshes run outside any single request, so they carry a background
	// context bound to the base client.
	refreshCtx := oauth.context(context.Background())
	tokens := &fileTokenSource{ctx: refreshCtx, path: cfg.TokenPath, conf: oauth.conf}
	httpClient := oauth2.NewClient(refreshCtx, oauth2.ReuseTokenSource(nil, tokens))
	httpClient.Timeout = timeout

	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	return &Client{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		httpClient: httpClient,
		oauth:      oauth,
		perPage:    perPage,
	}
}

// OAuth exposes the authorization helpers bound to the client's credentials.
func (c *Client) OAuth() *OAuth { return c.oauth }

// ListActivities returns a lister that pages through the athlete's activities
// on demand. Pages are only requested as the caller consumes them.
func (c *Client) ListActivities(_ context.Context, opts domain.ListOptions) (domain.ActivityLister, error) {
	return &pageLister{client: c, opts: opts, page: 1}, nil
}

// GetActivity fetches the detailed representation of one activity.
func (c *Client) GetActivity(ctx context.Context, id string) (domain.Record, error) {
	var rec domain.Record
	if err := c.get(ctx, "/activities/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *Client) listPage(ctx context.Context, opts domain.ListOptions, page int) ([]domain.Record, error) {
	q := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(c.perPage)},
	}
	if !opts.Before.IsZero() {
		q.Set("before", strconv.FormatInt(opts.Before.Unix(), 10))
	}
	if !opts.After.IsZero() {
		q.Set("after", strconv.FormatInt(opts.After.Unix(), 10))
	}
	var recs []domain.Record
	if err := c.get(ctx, "/athlete/activities", q, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.apiURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("strava api error: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(out)
}

// pageLister walks /athlete/activities one page at a time.
type pageLister struct {
	client *Client
	opts   domain.ListOptions
	page   int
	buf    []domain.Record
	done   bool
}

func (l *pageLister) Next(ctx context.Context) (domain.Record, error) {
	for len(l.buf) == 0 {
		if l.done {
			return nil, io.EOF
		}
		recs, err := l.client.listPage(ctx, l.opts, l.page)
		if err != nil {
			return nil, err
		}
		l.page++
		if len(recs) < l.client.perPage {
			l.done = true
		}
		l.buf = recs
	}
	rec := l.buf[0]
	l.buf = l.buf[1:]
	return rec, nil
}

func (l *pageLister) Close() error {
	l.buf = nil
	l.done = true
	return nil
}
