package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/servecut/servecut/internal/catalog"
	"github.com/servecut/servecut/internal/db"
	"github.com/servecut/servecut/internal/encode"
	"github.com/servecut/servecut/internal/logging"
)

func newScanCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Index raw session recordings into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Paths.RawDir
			}

			logger := logging.NewLogger(cfg.LogLevel)

			database, err := db.New(cfg.DBPath(), logging.WithComponent(logger, "db"))
			if err != nil {
				return fmt.Errorf("open catalog database: %w", err)
			}
			defer database.Close()

			svc := catalog.NewService(
				catalog.NewRepository(database.Conn()),
				encode.Prober{Bin: cfg.Encode.FFprobeBin},
				logging.WithComponent(logger, "catalog"),
			)

			report, err := svc.Scan(cmd.Context(), dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned %s: %d found, %d indexed, %d skipped\n",
				dir, report.Found, report.Indexed, report.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "raw recordings root (defaults to config raw_dir)")
	return cmd
}
