package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/medchan-backend/internal/adapter/postgres"
	pgdetection "github.com/heartmarshall/medchan-backend/internal/adapter/postgres/detection"
	pgmessage "github.com/heartmarshall/medchan-backend/internal/adapter/postgres/message"
	"github.com/heartmarshall/medchan-backend/internal/adapter/sqlite"
	"github.com/heartmarshall/medchan-backend/internal/config"
	"github.com/heartmarshall/medchan-backend/internal/domain"
)

// RecordStore is the upsert sink and read side of the record table.
type RecordStore interface {
	Upsert(ctx context.Context, rec domain.NormalizedRecord) (bool, error)
	UpsertBatch(ctx context.Context, recs []domain.NormalizedRecord) (domain.UpsertResult, error)
	List(ctx context.Context, filter domain.MessageFilter) ([]domain.StoredMessage, error)
	Count(ctx context.Context, channel string) (int, error)
}

// DetectionStore persists detection results.
type DetectionStore interface {
	Create(ctx context.Context, d domain.Detection) (*domain.Detection, error)
	List(ctx context.Context, offset, limit int) ([]domain.Detection, error)
}

// Compile-time interface assertions.
var (
	_ RecordStore    = (*pgmessage.Repo)(nil)
	_ RecordStore    = (*sqlite.MessageStore)(nil)
	_ DetectionStore = (*pgdetection.Repo)(nil)
	_ DetectionStore = (*sqlite.DetectionStore)(nil)
)

// Stores bundles the storage handles of one database.
type Stores struct {
	Messages   RecordStore
	Detections DetectionStore
	// Ping checks the database connection.
	Ping  func(ctx context.Context) error
	close func()
}

// Close releases the database handle.
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStores connects to the configured database and applies pending
// migrations.
func OpenStores(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite database opened", slog.String("path", cfg.DSN))
		return &Stores{
			Messages:   sqlite.NewMessageStore(db),
			Detections: sqlite.NewDetectionStore(db),
			Ping:       db.PingContext,
			close:      func() { db.Close() },
		}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("database connected", slog.Int("migrations_applied", applied))

		txm := postgres.NewTxManager(pool)
		return &Stores{
			Messages:   pgmessage.New(pool, txm),
			Detections: pgdetection.New(pool),
			Ping:       pool.Ping,
			close:      pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
