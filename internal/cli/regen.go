package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/servecut/servecut/internal/encode"
	"github.com/servecut/servecut/internal/ledger"
	"github.com/servecut/servecut/internal/logging"
)

// nopCommitter is used when the ledger rows already exist: regen only
// recreates clip files, it never rewrites the ledger.
type nopCommitter struct{}

func (nopCommitter) Append(ledger.Segment) error { return nil }

func newRegenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regen",
		Short: "Re-encode missing clips from their ledger frame ranges",
		Long: `Walks the ledger and re-encodes every clip whose output file is
missing, deriving the cut times from the recorded frame range at the source
frame rate. Existing clip files are never overwritten.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := logging.NewLogger(cfg.LogLevel)

			store := ledger.NewStore(cfg.Paths.LedgerPath, nil)
			segs, err := store.Load()
			if err != nil {
				return err
			}

			prober := encode.Prober{Bin: cfg.Encode.FFprobeBin}
			jobs := encode.NewManager(encode.Options{
				FFmpegBin: cfg.Encode.FFmpegBin,
				Preset:    cfg.Encode.Preset,
				CRF:       cfg.Encode.CRF,
			}, cfg.Encode.MaxJobs, nopCommitter{}, logging.WithComponent(logger, "encode"))

			rates := map[string]float64{}
			queued, skipped := 0, 0
			for _, seg := range segs {
				if _, err := os.Stat(seg.OutputClip); err == nil {
					skipped++
					continue
				}

				fps, ok := rates[seg.SourceVideo]
				if !ok {
					info, err := prober.Probe(seg.SourceVideo)
					if err != nil {
						logger.Error("cannot probe source, skipping clip",
							"source", seg.SourceVideo, "output_clip", seg.OutputClip, "error", err)
						continue
					}
					fps = info.FrameRate
					rates[seg.SourceVideo] = fps
				}

				for {
					_, err := jobs.Submit(seg, fps)
					if err == nil {
						queued++
						break
					}
					if !errors.Is(err, encode.ErrTooManyJobs) {
						logger.Error("submit failed", "output_clip", seg.OutputClip, "error", err)
						break
					}
					jobs.Poll()
					time.Sleep(100 * time.Millisecond)
				}
			}

			results := jobs.Drain()
			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "regen: %d re-encoded, %d failed, %d already present\n",
				queued-failed, failed, skipped)
			return nil
		},
	}
	return cmd
}
