package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Parth7487/imagedup/internal/config"
)

var (
	cfg      *config.Config
	log      zerolog.Logger
	dbPath   string
	logLevel string

	threshold float64
	workers   int
)

var rootCmd = &cobra.Command{
	Use:   "imagedup",
	Short: "Find duplicate and near-duplicate images",
	Long: `imagedup finds duplicate images in a directory tree using three
escalating strategies:

  1. Exact      - byte-identical files (MD5 digest)
  2. Perceptual - visually similar files (average/difference/perception/wavelet hashes)
  3. Structural - pixel-level similarity (SSIM over normalized grayscale)

For each group of duplicates it recommends which file to keep and how much
space deleting the rest would reclaim.

Example usage:
  imagedup scan ./photos            # Scan a folder for duplicates
  imagedup list                     # Show groups from the last scan
  imagedup clean --dry-run          # Preview what would be removed
  imagedup clean                    # Move duplicates to trash`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags not set explicitly fall back to config file values.
	if !cmd.Flags().Changed("threshold") && !rootCmd.PersistentFlags().Changed("threshold") {
		threshold = cfg.Threshold
	}
	if !rootCmd.PersistentFlags().Changed("db") {
		dbPath = cfg.Database.Path
	}
	if !rootCmd.PersistentFlags().Changed("workers") {
		workers = cfg.Performance.Workers
	}
	if !rootCmd.PersistentFlags().Changed("log-level") {
		logLevel = cfg.Logging.Level
	}

	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("threshold must be in [0,1], got %g", threshold)
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger().Level(level)

	return nil
}

func init() {
	rootCmd.PersistentPreRunE = setup
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDatabasePath(), "Path to SQLite database")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "Similarity threshold (0.0-1.0)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", config.DefaultWorkers, "Number of parallel workers for scanning")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
