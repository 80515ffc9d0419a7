package archive

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	"example.com/activityarchive/internal/domain"
)

// Activities returns every archived activity, newest first, ties broken by id
// descending. Records without any parseable start sort last.
func (s *Store) Activities() []domain.Activity {
	out := make([]domain.Activity, 0)
	for rec := range s.Enumerate() {
		a := domain.FromRecord(rec)
		if a.ID == "" {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].Start(), out[j].Start()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// Page returns up to limit activities strictly after cursor in listing order
// and the cursor for the following page, nil when the listing is exhausted.
func (s *Store) Page(cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor) {
	all := s.Activities()
	results := make([]domain.Activity, 0, limit)
	for _, a := range all {
		if cursor != nil && !before(a, *cursor) {
			continue
		}
		results = append(results, a)
		if len(results) == limit {
			break
		}
	}

	var next *domain.Cursor
	if limit > 0 && len(results) == limit {
		last := results[len(results)-1]
		next = &domain.Cursor{StartedAt: last.Start(), ID: last.ID}
	}
	return results, next
}

// before reports whether a sorts after the cursor position, i.e. (start, id) < cursor.
func before(a domain.Activity, c domain.Cursor) bool {
	start := a.Start()
	if !start.Equal(c.StartedAt) {
		return start.Before(c.StartedAt)
	}
	return a.ID < c.ID
}

// EncodeCursor serialises the cursor to a string token.
func EncodeCursor(c *domain.Cursor) string {
	if c == nil {
		return ""
	}
	raw := fmt.Sprintf("%s|%s", c.StartedAt.UTC().Format(time.RFC3339Nano), c.ID)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses the encoded cursor token.
func DecodeCursor(token string) (*domain.Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, err
	}
	return &domain.Cursor{StartedAt: ts, ID: parts[1]}, nil
}
