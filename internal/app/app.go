package app

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/medchan-backend/internal/adapter/cursorfile"
	"github.com/heartmarshall/medchan-backend/internal/adapter/provider/telegram"
	"github.com/heartmarshall/medchan-backend/internal/config"
	"github.com/heartmarshall/medchan-backend/internal/domain"
)

// App holds the configuration and logger shared by every command and builds
// the components each command needs.
type App struct {
	Cfg *config.Config
	Log *slog.Logger
}

// New loads configuration and initializes the logger.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(cfg.Log)
	logger.Debug("configuration loaded",
		slog.String("version", BuildVersion()),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("log_level", cfg.Log.Level),
	)

	return &App{Cfg: cfg, Log: logger}, nil
}

// Sources parses refs, falling back to defaults when refs is empty.
func (a *App) Sources(refs, defaults []string) ([]domain.Source, error) {
	if len(refs) == 0 {
		refs = defaults
	}
	return domain.ParseSources(refs)
}

// Jobs returns the ingestion jobs backed by the cursor directory.
func (a *App) Jobs() *Jobs {
	return NewJobs(a.Cfg.Pipeline, a.Log, cursorfile.New(a.Cfg.Pipeline.CursorDir))
}

// Telegram returns the channel preview fetcher and the photo downloader,
// sharing one rate-limited client.
func (a *App) Telegram() (*telegram.Fetcher, *telegram.MediaDownloader) {
	client := telegram.NewClient(a.Cfg.Telegram, a.Log)
	return telegram.NewFetcher(client), telegram.NewMediaDownloader(client, a.Cfg.Pipeline.ImagesDir)
}

// OpenStores connects to the configured database.
func (a *App) OpenStores(ctx context.Context) (*Stores, error) {
	return OpenStores(ctx, a.Cfg.Database, a.Log)
}
