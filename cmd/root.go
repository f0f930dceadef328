// Package cmd defines the pos-ledger command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pos_ledger/internal/config"
)

// cfgFile holds the path to the YAML configuration file, if any.
var cfgFile string

// verbose forces debug logging.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "pos-ledger",
	Short: "Record event point-of-sale transactions into a spreadsheet ledger",
	Long: `pos-ledger records vendor sales at events into a spreadsheet-backed ledger.
Unit prices are looked up per pricing event in a separate reference spreadsheet
and every unit sold becomes one ledger row.

Example Usage:
  pos-ledger serve --config ./pos.yaml
  pos-ledger events
  pos-ledger price --event Spring --item A1`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML configuration file (default $POS_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig loads configuration and builds the matching logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := newLogger(level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: log_level: %v", config.ErrInvalidConfig, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
