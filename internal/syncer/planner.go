// Package syncer pulls activities from the upstream feed into the local
// archive, one new file per activity.
package syncer

import (
	"fmt"
	"time"

	"example.com/activityarchive/internal/domain"
)

// Mode selects the fetch window relative to the archive bounds.
type Mode string

const (
	ModeDefault Mode = "default"
	ModeNew     Mode = "new"
	ModeOlder   Mode = "older"
)

// ParseMode maps the command-line switches onto a Mode.
func ParseMode(newer, older bool) (Mode, error) {
	switch {
	case newer && older:
		return "", fmt.Errorf("-new and -older are mutually exclusive")
	case newer:
		return ModeNew, nil
	case older:
		return ModeOlder, nil
	default:
		return ModeDefault, nil
	}
}

// Plan is the listing window chosen for one sync run.
type Plan struct {
	Mode    Mode
	Options domain.ListOptions
	// Anchored is false when the archive had nothing to anchor to and the
	// listing starts from the newest upstream activity.
	Anchored    bool
	Description string
}

// PlanFetch chooses the cursor for mode given the archive bounds.
//
//	older          + oldest known -> before oldest
//	older          + empty        -> newest first
//	new / default  + newest known -> after newest
//	new / default  + empty        -> newest first
func PlanFetch(mode Mode, bounds domain.Bounds) Plan {
	p := Plan{Mode: mode}
	switch mode {
	case ModeOlder:
		if bounds.Oldest.IsZero() {
			p.Description = "archive is empty; older mode has nothing to anchor to, fetching newest first"
			return p
		}
		p.Options.Before = bounds.Oldest
		p.Anchored = true
		p.Description = "mode older/backfill: listing activities before oldest archived " + bounds.Oldest.Format(time.RFC3339)
	case ModeNew:
		if bounds.Newest.IsZero() {
			p.Description = "archive is empty; new mode has nothing to anchor to, fetching newest first"
			return p
		}
		p.Options.After = bounds.Newest
		p.Anchored = true
		p.Description = "mode new/incremental: listing activities after newest archived " + bounds.Newest.Format(time.RFC3339)
	default:
		p.Mode = ModeDefault
		if bounds.Newest.IsZero() {
			p.Description = "archive is empty; fetching newest first"
			return p
		}
		p.Options.After = bounds.Newest
		p.Anchored = true
		p.Description = "mode default (sync like new): listing activities after newest archived " + bounds.Newest.Format(time.RFC3339)
	}
	return p
}
