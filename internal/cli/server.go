package cli

import (
	"github.com/spf13/cobra"

	"github.com/heartmarshall/medchan-backend/internal/app"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New()
			if err != nil {
				return err
			}

			// Opening the stores applies every pending migration.
			stores, err := a.OpenStores(cmd.Context())
			if err != nil {
				return err
			}
			stores.Close()

			cmd.Println("database is up to date")
			return nil
		},
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the record API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New()
			if err != nil {
				return err
			}

			stores, err := a.OpenStores(cmd.Context())
			if err != nil {
				return err
			}
			defer stores.Close()

			return app.Serve(cmd.Context(), a.Cfg, a.Log, stores)
		},
	}
}
