package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"steamfetch/pkg/config"
	"steamfetch/pkg/logger"
	"steamfetch/pkg/pipeline"
)

var (
	// Fetch command flags
	outputDir string
	jsonFiles []string
	csvFiles  []string
	delay     time.Duration
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch game details for all configured identifier sources",
	Long: `Fetch details for every identifier in the configured JSON and CSV
sources, appending one CSV row per game to output/{category}_{date}.csv.

Identifiers already present in a category's output file are skipped, so
rerunning after an interruption fetches only the remainder. Failed
identifiers are logged and skipped; they are retried on the next full
rerun because they never reach the output file.`,
	Example: `  # Fetch using the config file defaults
  steamfetch fetch

  # Fetch a single CSV of IDs into a custom output directory
  steamfetch fetch --csv id.csv --output ./output

  # Slow down between requests
  steamfetch fetch --delay 5s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runFetch()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for CSV files")
	fetchCmd.Flags().StringSliceVar(&jsonFiles, "json", nil, "JSON collection files to read identifiers from")
	fetchCmd.Flags().StringSliceVar(&csvFiles, "csv", nil, "CSV files to read identifiers from")
	fetchCmd.Flags().DurationVar(&delay, "delay", 0, "fixed delay between requests (e.g. 2s)")
}

func runFetch() {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if len(jsonFiles) > 0 {
		flags["json-files"] = jsonFiles
	}
	if len(csvFiles) > 0 {
		flags["csv-files"] = csvFiles
	}
	if delay > 0 {
		flags["delay"] = delay
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		logger.WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		logger.WithError(err).Error("failed to initialize logger")
		os.Exit(1)
	}
	logger.WithField("version", version).Info("steamfetch starting")

	p := pipeline.New(cfg, logger.GetLogger())
	if err := p.Run(context.Background()); err != nil {
		logger.WithError(err).Error("fetch run failed")
		os.Exit(1)
	}
}
