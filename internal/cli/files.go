package cli

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/medchan-backend/internal/app"
)

func newCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [channel...]",
		Short: "Normalize the raw exports into the cleaned table",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New()
			if err != nil {
				return err
			}
			sources, err := a.Sources(args, a.Cfg.Pipeline.Sources)
			if err != nil {
				return err
			}

			report, err := a.Jobs().Clean(cmd.Context(), sources)
			if err != nil {
				return err
			}
			app.RenderSummary(cmd.OutOrStdout(), "clean", report.SummaryRows())
			return nil
		},
	}
}

func newMergeCommand() *cobra.Command {
	var dedupe bool

	cmd := &cobra.Command{
		Use:   "merge [channel...]",
		Short: "Concatenate the raw exports into one file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New()
			if err != nil {
				return err
			}
			sources, err := a.Sources(args, a.Cfg.Pipeline.Sources)
			if err != nil {
				return err
			}

			report, err := a.Jobs().Merge(cmd.Context(), sources, dedupe)
			if err != nil {
				return err
			}
			app.RenderSummary(cmd.OutOrStdout(), "merge", report.SummaryRows())
			return nil
		},
	}
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "drop repeated rows, keeping the first")
	return cmd
}

func newLoadCommand() *cobra.Command {
	var (
		cleaned bool
		file    string
	)

	cmd := &cobra.Command{
		Use:   "load [channel...]",
		Short: "Upsert messages into the database",
		Long: `Without --cleaned, upserts raw export rows newer than each channel's load
cursor. With --cleaned, upserts every row of the cleaned table
(pipeline.cleaned_path or --file). Existing messages are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New()
			if err != nil {
				return err
			}

			stores, err := a.OpenStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()

			if cleaned {
				if file == "" {
					file = a.Cfg.Pipeline.CleanedPath
				}
				report, err := a.Jobs().LoadCleaned(cmd.Context(), stores.Messages, file)
				if err != nil {
					return err
				}
				app.RenderSummary(cmd.OutOrStdout(), "load", report.SummaryRows())
				return nil
			}

			sources, err := a.Sources(args, a.Cfg.Pipeline.Sources)
			if err != nil {
				return err
			}
			return reportErr(cmd, a.Jobs().Load(cmd.Context(), stores.Messages, sources))
		},
	}
	cmd.Flags().BoolVar(&cleaned, "cleaned", false, "load the cleaned table instead of the raw exports")
	cmd.Flags().StringVar(&file, "file", "", "cleaned table to load (with --cleaned)")
	return cmd
}
