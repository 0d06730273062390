package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/servecut/servecut/internal/encode"
	"github.com/servecut/servecut/internal/frames"
	"github.com/servecut/servecut/internal/ledger"
	"github.com/servecut/servecut/internal/logging"
)

func newFramesCmd() *cobra.Command {
	var (
		outDir string
		clip   string
		every  int
		start  int
		end    int
	)

	cmd := &cobra.Command{
		Use:   "frames",
		Short: "Extract still frames from finished clips",
		Long: `Dumps frames for labeling. By default every ledger clip gets an
evenly spaced set (~4 per second, 30-40 per clip). With --clip a single clip
can instead be dumped every Nth frame (--every) or over an explicit inclusive
frame range (--start/--end).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := logging.NewLogger(cfg.LogLevel)

			prober := encode.Prober{Bin: cfg.Encode.FFprobeBin}
			extractor := frames.Extractor{
				Bin:    cfg.Encode.FFmpegBin,
				Logger: logging.WithComponent(logger, "frames"),
			}

			store := ledger.NewStore(cfg.Paths.LedgerPath, nil)
			segs, err := store.Load()
			if err != nil {
				return err
			}

			targets := segs
			if clip != "" {
				targets = nil
				for _, seg := range segs {
					if seg.OutputClip == clip {
						targets = []ledger.Segment{seg}
						break
					}
				}
				if targets == nil {
					return fmt.Errorf("no ledger row for %s", clip)
				}
			}

			done := 0
			for _, seg := range targets {
				info, err := prober.Probe(seg.OutputClip)
				if err != nil {
					logger.Error("cannot probe clip, skipping", "clip", seg.OutputClip, "error", err)
					continue
				}

				dir := filepath.Join(outDir, frames.DirName(seg.Player, seg.SessionID, seg.ServeID))
				switch {
				case every > 0:
					err = extractor.ExtractEveryNth(seg.OutputClip, dir, every)
				case start >= 0 && end >= 0:
					err = extractor.ExtractRange(seg.OutputClip, dir, start, end, info.FrameCount)
				default:
					err = extractor.ExtractIndices(seg.OutputClip, dir, frames.PlanEven(info.FrameCount, info.FrameRate))
				}
				if err != nil {
					logger.Error("extraction failed", "clip", seg.OutputClip, "error", err)
					continue
				}
				done++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "extracted frames for %d/%d clips into %s\n",
				done, len(targets), outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", filepath.Join("data", "frames"), "frame output root")
	cmd.Flags().StringVar(&clip, "clip", "", "limit to one clip path from the ledger")
	cmd.Flags().IntVar(&every, "every", 0, "dump every Nth frame instead of the even spread")
	cmd.Flags().IntVar(&start, "start", -1, "range start frame (with --end)")
	cmd.Flags().IntVar(&end, "end", -1, "range end frame, inclusive (with --start)")
	return cmd
}
