package cli

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/medchan-backend/internal/app"
)

func newScrapeCommand() *cobra.Command {
	var load bool

	cmd := &cobra.Command{
		Use:   "scrape [channel...]",
		Short: "Fetch new channel messages into the raw exports",
		Long: `Fetches messages newer than each channel's cursor from the public preview
and appends them to <raw_dir>/<channel>_data.csv. The cursor advances only
after the batch is written. Channels default to pipeline.sources.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New()
			if err != nil {
				return err
			}
			sources, err := a.Sources(args, a.Cfg.Pipeline.Sources)
			if err != nil {
				return err
			}

			var store app.RecordStore
			if load {
				stores, err := a.OpenStores(cmd.Context())
				if err != nil {
					return err
				}
				defer stores.Close()
				store = stores.Messages
			}

			fetcher, _ := a.Telegram()
			return reportErr(cmd, a.Jobs().Scrape(cmd.Context(), fetcher, sources, store))
		},
	}
	cmd.Flags().BoolVar(&load, "load", false, "also upsert the normalized messages into the database")
	return cmd
}

func newScrapeImagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape-images [channel...]",
		Short: "Download photos of new channel messages",
		Long: `Downloads photo attachments of messages newer than each channel's image
cursor to <images_dir>/<channel>/<id>.jpg. Channels default to
pipeline.image_sources.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New()
			if err != nil {
				return err
			}
			sources, err := a.Sources(args, a.Cfg.Pipeline.ImageSources)
			if err != nil {
				return err
			}

			fetcher, media := a.Telegram()
			return reportErr(cmd, a.Jobs().ScrapeImages(cmd.Context(), fetcher, media, sources))
		},
	}
}
