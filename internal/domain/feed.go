package domain

import (
	"context"
	"time"
)

// ListOptions bounds an activity listing. A zero Before/After means unset;
// with neither set the upstream returns the most recent activities first.
type ListOptions struct {
	Before time.Time
	After  time.Time
}

// ActivityLister lazily yields activity summaries. Next returns io.EOF once the
// listing is exhausted.
type ActivityLister interface {
	Next(ctx context.Context) (Record, error)
	Close() error
}

// ActivityFeed is the upstream API as seen by the archive. Token refresh is the
// implementation's concern and happens before any call.
type ActivityFeed interface {
	ListActivities(ctx context.Context, opts ListOptions) (ActivityLister, error)
	GetActivity(ctx context.Context, id string) (Record, error)
}
