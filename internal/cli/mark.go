package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/servecut/servecut/internal/catalog"
	"github.com/servecut/servecut/internal/clips"
	"github.com/servecut/servecut/internal/config"
	"github.com/servecut/servecut/internal/db"
	"github.com/servecut/servecut/internal/encode"
	"github.com/servecut/servecut/internal/ledger"
	"github.com/servecut/servecut/internal/session"
	"github.com/servecut/servecut/internal/tui"
)

func newMarkCmd() *cobra.Command {
	var (
		videoPath string
		player    string
		maxJobs   int
	)

	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Interactively mark and cut serve clips from a recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if maxJobs < 0 {
				maxJobs = cfg.Encode.MaxJobs
			}
			return runMark(cfg, videoPath, player, maxJobs)
		},
	}

	cmd.Flags().StringVar(&videoPath, "video", "", "raw input video (required)")
	cmd.Flags().StringVar(&player, "player", "", "player name for the ledger (required)")
	cmd.Flags().IntVar(&maxJobs, "jobs", -1, "max parallel encodes (0 = unbounded)")
	cmd.MarkFlagRequired("video")
	cmd.MarkFlagRequired("player")
	return cmd
}

func runMark(cfg *config.Config, videoPath, player string, maxJobs int) error {
	// The session id comes from the raw path layout; without it the ledger
	// row could not be attributed, so this is fatal before any state moves.
	sessionID, err := clips.SessionIDFromPath(videoPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := fileLogger(cfg, "mark")
	if err != nil {
		return err
	}
	defer closeLog()

	info, err := probeSource(cfg, videoPath, logger.With("component", "catalog"))
	if err != nil {
		return err
	}
	logger.Info("source opened",
		"path", videoPath,
		"fps", info.FrameRate,
		"frames", info.FrameCount,
		"duration_s", info.Duration,
	)

	store := ledger.NewStore(cfg.Paths.LedgerPath, logger.With("component", "ledger"))
	jobs := encode.NewManager(encode.Options{
		FFmpegBin: cfg.Encode.FFmpegBin,
		Preset:    cfg.Encode.Preset,
		CRF:       cfg.Encode.CRF,
	}, maxJobs, store, logger.With("component", "encode"))

	outputDir := clips.OutputDir(cfg.Paths.ClipsDir, player, sessionID)
	ctrl := session.New(session.NewClock(info), videoPath, jobs, store, player, sessionID, outputDir, session.Options{
		FastMultiplier: cfg.Playback.FastMultiplier,
		SeekBackFrames: cfg.Playback.SeekBackFrames,
		FastRevert:     time.Duration(cfg.Playback.FastRevertMs) * time.Millisecond,
	}, logger.With("component", "session"))

	model := tui.New(ctrl, filepath.Base(videoPath))
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run marking session: %w", err)
	}
	return nil
}

// probeSource resolves source metadata, preferring the catalog over a fresh
// ffprobe run.
func probeSource(cfg *config.Config, videoPath string, logger *slog.Logger) (*encode.SourceInfo, error) {
	prober := encode.Prober{Bin: cfg.Encode.FFprobeBin}

	database, err := db.New(cfg.DBPath(), nil)
	if err != nil {
		logger.Warn("catalog unavailable, probing directly", "error", err)
		return prober.Probe(videoPath)
	}
	defer database.Close()

	svc := catalog.NewService(catalog.NewRepository(database.Conn()), prober, nil)
	rec, err := svc.Lookup(context.Background(), videoPath)
	if err == nil && rec != nil {
		return &encode.SourceInfo{
			Path:       videoPath,
			FrameRate:  rec.FrameRate,
			FrameCount: rec.FrameCount,
			Duration:   rec.Duration,
			Width:      rec.Width,
			Height:     rec.Height,
		}, nil
	}
	return prober.Probe(videoPath)
}
