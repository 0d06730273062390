// Package cli wires the servecut subcommands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/servecut/servecut/internal/config"
	"github.com/servecut/servecut/internal/logging"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "servecut",
	Short: "Cut labeled serve clips out of session recordings",
	Long: `servecut builds a labeled dataset of serve clips from long session
recordings: mark clips interactively, re-encode them in the background, and
keep every finished clip in a CSV ledger shared with the labeling and frame
extraction tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path")

	rootCmd.AddCommand(
		newInitCmd(),
		newMarkCmd(),
		newServeCmd(),
		newScanCmd(),
		newPatchCmd(),
		newRegenCmd(),
		newFramesCmd(),
	)
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// fileLogger returns a logger writing to a timestamped file under the
// configured log dir, for commands whose stdout belongs to the TUI.
func fileLogger(cfg *config.Config, name string) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(cfg.Paths.LogDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("%s-%s.log", name, time.Now().Format("20060102-150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.NewLoggerTo(f, cfg.LogLevel), func() { f.Close() }, nil
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a sample config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteSample(cfgPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", cfgPath)
			return nil
		},
	}
}
