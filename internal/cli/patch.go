package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/servecut/servecut/internal/encode"
	"github.com/servecut/servecut/internal/ledger"
	"github.com/servecut/servecut/internal/logging"
	"github.com/servecut/servecut/internal/timecode"
)

func newPatchCmd() *cobra.Command {
	var (
		clip string
		when string
	)

	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Set a clip's landing frame from a timestamp",
		Long: `Converts a timestamp inside a clip ("hh:mm:ss.ms" or plain seconds)
to a frame index at the clip's frame rate and writes it into the ledger row
matching the clip path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := logging.NewLogger(cfg.LogLevel)

			sec, err := timecode.ParseSeconds(when)
			if err != nil {
				return err
			}

			info, err := encode.Prober{Bin: cfg.Encode.FFprobeBin}.Probe(clip)
			if err != nil {
				return err
			}
			frame := timecode.FrameAt(sec, info.FrameRate)

			store := ledger.NewStore(cfg.Paths.LedgerPath, logging.WithComponent(logger, "ledger"))
			if err := store.PatchLandingFrame(clip, frame); err != nil {
				if errors.Is(err, ledger.ErrRowNotFound) {
					return fmt.Errorf("no ledger row for %s, file left unchanged", clip)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "landing frame %d (%.3fs at %.2f fps) written for %s\n",
				frame, sec, info.FrameRate, clip)

			printLabelProgress(cmd, store)
			return nil
		},
	}

	cmd.Flags().StringVar(&clip, "clip", "", "output clip path as recorded in the ledger (required)")
	cmd.Flags().StringVar(&when, "time", "", "landing timestamp inside the clip (required)")
	cmd.MarkFlagRequired("clip")
	cmd.MarkFlagRequired("time")
	return cmd
}

func printLabelProgress(cmd *cobra.Command, store *ledger.Store) {
	segs, err := store.Load()
	if err != nil {
		return
	}
	labeled := 0
	for _, seg := range segs {
		if seg.LandingFrame != nil {
			labeled++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "labeled %d/%d clips, %d remaining\n",
		labeled, len(segs), len(segs)-labeled)
}
