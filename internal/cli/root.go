// Package cli defines the medchan command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/medchan-backend/internal/app"
	"github.com/heartmarshall/medchan-backend/internal/app/pipeline"
)

// NewRootCommand builds the medchan command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "medchan",
		Short: "Collect, clean and store messages of public Telegram medical channels",
		Long: `medchan scrapes public Telegram channel previews, keeps per-channel raw
exports and cursors, cleans and merges the exports, loads the cleaned
messages into the database and serves the record API.`,
		Version:       app.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configPath != "" {
				return os.Setenv("CONFIG_PATH", configPath)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file (overrides CONFIG_PATH)")

	root.AddCommand(
		newScrapeCommand(),
		newScrapeImagesCommand(),
		newCleanCommand(),
		newMergeCommand(),
		newLoadCommand(),
		newMigrateCommand(),
		newServeCommand(),
	)
	return root
}

// reportErr renders a pipeline report and turns failed sources into an error.
func reportErr(cmd *cobra.Command, report pipeline.Report) error {
	app.RenderReport(cmd.OutOrStdout(), report)
	if !report.HasErrors() {
		return nil
	}
	failed := 0
	for _, res := range report.Results {
		if res.Err != nil {
			failed++
		}
	}
	return fmt.Errorf("%s: %d of %d sources failed", report.Job, failed, len(report.Results))
}
