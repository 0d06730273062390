// Package catalog indexes raw session recordings so the marking tool and
// review server can look up frame rates and counts without reprobing.
package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/servecut/servecut/internal/clips"
	"github.com/servecut/servecut/internal/encode"
)

var videoExts = map[string]bool{
	".mp4": true,
	".mov": true,
	".mkv": true,
	".avi": true,
}

// Prober abstracts ffprobe for tests.
type Prober interface {
	Probe(path string) (*encode.SourceInfo, error)
}

// ScanReport summarizes one catalog scan.
type ScanReport struct {
	Found   int
	Indexed int
	Skipped int
}

// Service scans raw directories and answers recording lookups.
type Service struct {
	repo   Repository
	prober Prober
	logger *slog.Logger
}

// NewService returns a catalog Service.
func NewService(repo Repository, prober Prober, logger *slog.Logger) *Service {
	return &Service{repo: repo, prober: prober, logger: logger}
}

// Scan walks root for video files inside session directories, probes each
// one, and upserts it into the catalog. Files outside the expected
// raw/<date>/session_<N>/ layout are skipped, as are files that fail to
// probe; neither aborts the scan.
func (s *Service) Scan(ctx context.Context, root string) (*ScanReport, error) {
	report := &ScanReport{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !videoExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		report.Found++

		sessionID, err := clips.SessionIDFromPath(path)
		if err != nil {
			report.Skipped++
			if s.logger != nil {
				s.logger.Warn("skipping recording outside session layout", "path", path)
			}
			return nil
		}

		info, err := s.prober.Probe(path)
		if err != nil {
			report.Skipped++
			if s.logger != nil {
				s.logger.Warn("probe failed", "path", path, "error", err)
			}
			return nil
		}

		existing, err := s.repo.GetByPath(ctx, path)
		if err != nil {
			return err
		}
		id := NewID()
		if existing != nil {
			id = existing.ID
		}

		rec := &Recording{
			ID:         id,
			Path:       path,
			SessionID:  sessionID,
			FrameRate:  info.FrameRate,
			FrameCount: info.FrameCount,
			Duration:   info.Duration,
			Width:      info.Width,
			Height:     info.Height,
			ScannedAt:  time.Now(),
		}
		if err := s.repo.Upsert(ctx, rec); err != nil {
			return err
		}
		report.Indexed++

		if s.logger != nil {
			s.logger.Info("recording indexed",
				"path", path,
				"session_id", sessionID,
				"fps", info.FrameRate,
				"frames", info.FrameCount,
			)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return report, nil
}

// Lookup returns the cataloged recording for path, or nil when unknown.
func (s *Service) Lookup(ctx context.Context, path string) (*Recording, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetByPath(ctx, abs)
	if err != nil || rec != nil {
		return rec, err
	}
	return s.repo.GetByPath(ctx, path)
}

// List returns every cataloged recording.
func (s *Service) List(ctx context.Context) ([]*Recording, error) {
	return s.repo.List(ctx)
}
