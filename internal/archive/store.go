// Package archive manages the local activity archive: one JSON object per
// activity, named <id>.json, inside a single directory.
package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"example.com/activityarchive/internal/domain"
)

const (
	fileSuffix = ".json"
	tmpSuffix  = ".tmp"
)

var (
	// ErrNotFound is returned when no archived record exists for an id.
	ErrNotFound = errors.New("activity not archived")
	// ErrInvalidID is returned for identifiers that cannot name an archive file.
	ErrInvalidID = errors.New("invalid activity id")
	// ErrMissingDir is returned when a reader requires an archive that does not exist.
	ErrMissingDir = errors.New("archive directory not found")
)

// Store is a directory of per-activity JSON files. Listing, bounds and
// existence checks only touch the filesystem.
type Store struct {
	dir string
}

// New returns a Store rooted at dir without touching the filesystem.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Open returns a Store rooted at dir, creating the directory when needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return New(dir), nil
}

// Dir returns the archive directory.
func (s *Store) Dir() string { return s.dir }

// RequireDir fails with ErrMissingDir when the archive directory is absent.
func (s *Store) RequireDir() error {
	info, err := os.Stat(s.dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrMissingDir, s.dir)
	}
	return nil
}

// Path returns the file that holds the record for id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+fileSuffix)
}

func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

// Exists reports whether a record for id is already archived.
func (s *Store) Exists(id string) bool {
	if !validID(id) {
		return false
	}
	info, err := os.Stat(s.Path(id))
	return err == nil && info.Mode().IsRegular()
}

func (s *Store) files() []string {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+fileSuffix))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

// Count returns the number of archive files, readable or not.
func (s *Store) Count() int {
	return len(s.files())
}

// Enumerate lazily yields every archived record in file-name order. Files that
// cannot be read or do not hold a JSON object are skipped: a partial or corrupt
// file must never abort a full scan.
func (s *Store) Enumerate() iter.Seq[domain.Record] {
	return func(yield func(domain.Record) bool) {
		for _, path := range s.files() {
			rec, err := readRecord(path)
			if err != nil {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

func readRecord(path string) (domain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec domain.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after json object")
	}
	if rec == nil {
		return nil, errors.New("not a json object")
	}
	return rec, nil
}

// Get reads the record archived for id.
func (s *Store) Get(id string) (domain.Record, error) {
	if !validID(id) {
		return nil, ErrInvalidID
	}
	rec, err := readRecord(s.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	return rec, nil
}

// Bounds scans the archive for the oldest and newest start instant. It is
// recomputed on every call.
func (s *Store) Bounds() domain.Bounds {
	var b domain.Bounds
	for rec := range s.Enumerate() {
		if t, ok := domain.StartInstant(rec); ok {
			b.Observe(t)
		}
	}
	return b
}

// WriteAtomic persists rec as <id>.json by writing <id>.json.tmp and renaming
// it over the final name, so readers never observe a partial record.
func (s *Store) WriteAtomic(id string, rec domain.Record) error {
	if !validID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	body, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}
	final := s.Path(id)
	tmp := final + tmpSuffix
	if err := writeFileSync(tmp, append(body, '\n')); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", id, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit %s: %w", id, err)
	}
	return nil
}

// WriteFileAtomic applies the same temp-then-rename discipline to any derived
// artifact (CSV tables, text reports, token files).
func WriteFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + tmpSuffix
	if err := writeFileSync(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
