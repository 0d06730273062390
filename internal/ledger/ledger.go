// Package ledger persists committed segments to the shared CSV file that the
// frame extractor and landing-frame labeler consume. Appends happen only
// after an encode is confirmed successful, so a row never exists without its
// clip file. Writes from separate servecut processes are serialized through
// a sidecar flock.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrRowNotFound reports a patch or delete whose key matched no row.
var ErrRowNotFound = errors.New("ledger row not found")

// Store reads and writes the ledger CSV at a fixed path.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// NewStore returns a Store for the ledger at path. The file is created lazily
// on first append.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

// Path returns the ledger file location.
func (s *Store) Path() string {
	return s.path
}

// Append commits one segment, writing the header first when the file is new.
// The write is flushed and synced before the lock is released.
func (s *Store) Append(seg Segment) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	defer s.lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat ledger: %w", err)
	}

	w := csv.NewWriter(f)
	if stat.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("write ledger header: %w", err)
		}
	}
	if err := w.Write(seg.record()); err != nil {
		return fmt.Errorf("write ledger row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("ledger row committed",
			"player", seg.Player,
			"serve_id", seg.ServeID,
			"output_clip", seg.OutputClip,
		)
	}
	return nil
}

// Load reads every row. A missing ledger file yields an empty slice.
func (s *Store) Load() ([]Segment, error) {
	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock ledger: %w", err)
	}
	defer s.lock.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() ([]Segment, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)

	var segs []Segment
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ledger: %w", err)
		}
		if first {
			first = false
			if rec[0] == Header[0] {
				continue
			}
		}
		seg, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("parse ledger row: %w", err)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// Delete removes the row keyed by (player, serveID, outputClip) with a full
// filtered rewrite. Returns ErrRowNotFound when no row matches.
func (s *Store) Delete(player string, serveID int, outputClip string) error {
	return s.rewrite(func(segs []Segment) ([]Segment, error) {
		kept := segs[:0]
		removed := 0
		for _, seg := range segs {
			if seg.Key(player, serveID, outputClip) {
				removed++
				continue
			}
			kept = append(kept, seg)
		}
		if removed == 0 {
			return nil, ErrRowNotFound
		}
		return kept, nil
	})
}

// PatchLandingFrame sets landing_frame on the row matching outputClip.
// Returns ErrRowNotFound, leaving the file untouched, when no row matches.
func (s *Store) PatchLandingFrame(outputClip string, frame int) error {
	return s.rewrite(func(segs []Segment) ([]Segment, error) {
		found := false
		for i := range segs {
			if segs[i].OutputClip == outputClip {
				f := frame
				segs[i].LandingFrame = &f
				found = true
			}
		}
		if !found {
			return nil, ErrRowNotFound
		}
		return segs, nil
	})
}

// rewrite loads all rows, applies fn, and atomically replaces the file via
// a temp file and rename. fn returning an error aborts with the original
// file intact.
func (s *Store) rewrite(fn func([]Segment) ([]Segment, error)) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	defer s.lock.Unlock()

	segs, err := s.loadLocked()
	if err != nil {
		return err
	}

	next, err := fn(segs)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".serves-*.csv")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(Header); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, seg := range next {
		if err := w.Write(seg.record()); err != nil {
			tmp.Close()
			return fmt.Errorf("write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
