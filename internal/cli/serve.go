package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/servecut/servecut/internal/api"
	"github.com/servecut/servecut/internal/catalog"
	"github.com/servecut/servecut/internal/db"
	"github.com/servecut/servecut/internal/encode"
	"github.com/servecut/servecut/internal/ledger"
	"github.com/servecut/servecut/internal/logging"
	"github.com/servecut/servecut/internal/metrics"
)

func newServeCmd() *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the review server over the ledger and clip files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Paths.APIBind = bind
			}

			logger := logging.NewLogger(cfg.LogLevel)

			database, err := db.New(cfg.DBPath(), logging.WithComponent(logger, "db"))
			if err != nil {
				return fmt.Errorf("open catalog database: %w", err)
			}
			defer database.Close()

			catalogSvc := catalog.NewService(
				catalog.NewRepository(database.Conn()),
				encode.Prober{Bin: cfg.Encode.FFprobeBin},
				logging.WithComponent(logger, "catalog"),
			)

			server := api.NewServer(api.ServerConfig{
				Bind:      cfg.Paths.APIBind,
				Ledger:    ledger.NewStore(cfg.Paths.LedgerPath, logging.WithComponent(logger, "ledger")),
				Catalog:   catalogSvc,
				Metrics:   metrics.New(),
				Logger:    logging.WithComponent(logger, "api"),
				StartTime: time.Now(),
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("received shutdown signal", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown review server: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "bind address (overrides config)")
	return cmd
}
