package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/heartmarshall/medchan-backend/internal/adapter/csvfile"
	"github.com/heartmarshall/medchan-backend/internal/app/pipeline"
	"github.com/heartmarshall/medchan-backend/internal/config"
	"github.com/heartmarshall/medchan-backend/internal/domain"
	"github.com/heartmarshall/medchan-backend/internal/merge"
	"github.com/heartmarshall/medchan-backend/internal/normalize"
)

// MediaSaver persists the photo attachments of a batch of items.
type MediaSaver interface {
	Save(ctx context.Context, src domain.Source, items []domain.RawItem) (domain.UpsertResult, error)
}

// Jobs runs the ingestion jobs over the configured data directories.
type Jobs struct {
	cfg     config.PipelineConfig
	log     *slog.Logger
	cursors pipeline.CursorStore
}

// NewJobs creates Jobs.
func NewJobs(cfg config.PipelineConfig, logger *slog.Logger, cursors pipeline.CursorStore) *Jobs {
	return &Jobs{cfg: cfg, log: logger, cursors: cursors}
}

// RawPath returns the raw export path of a source.
func (j *Jobs) RawPath(src domain.Source) string {
	return filepath.Join(j.cfg.RawDir, csvfile.RawFileName(src.ID))
}

// ---------------------------------------------------------------------------
// Scrape
// ---------------------------------------------------------------------------

// Scrape fetches new messages of every source and appends them to the raw
// exports. With a non-nil store the normalized records are upserted first,
// so a failed write leaves both the export and the cursor untouched.
func (j *Jobs) Scrape(ctx context.Context, fetcher pipeline.Fetcher, sources []domain.Source, store RecordStore) pipeline.Report {
	persist := func(ctx context.Context, src domain.Source, batch []domain.RawItem) (domain.UpsertResult, error) {
		res := domain.UpsertResult{Inserted: len(batch)}
		if store != nil {
			recs := persistable(normalize.Records(batch))
			stored, err := store.UpsertBatch(ctx, recs)
			if err != nil {
				return domain.UpsertResult{}, err
			}
			res = stored
			res.Rejected = len(batch) - len(recs)
		}
		if err := csvfile.AppendRawFile(j.RawPath(src), batch); err != nil {
			return domain.UpsertResult{}, domain.NewPersistenceError("append raw export", src.ID, err)
		}
		return res, nil
	}

	runner := pipeline.New(j.log, j.cursors, fetcher, pipeline.Stages[domain.RawItem]{
		Transform: identity[domain.RawItem],
		Persist:   persist,
	}, pipeline.Config{
		Job:        "scrape",
		FetchLimit: j.cfg.FetchLimit,
		BatchSize:  j.cfg.BatchSize,
	})
	return runner.Run(ctx, sources)
}

// ScrapeImages downloads the photos of new messages. It keeps its own cursor
// per source, apart from the message cursor.
func (j *Jobs) ScrapeImages(ctx context.Context, fetcher pipeline.Fetcher, saver MediaSaver, sources []domain.Source) pipeline.Report {
	runner := pipeline.New(j.log, j.cursors, fetcher, pipeline.Stages[domain.RawItem]{
		Transform: identity[domain.RawItem],
		Persist:   saver.Save,
	}, pipeline.Config{
		Job:        "scrape-images",
		FetchLimit: j.cfg.ImageFetchLimit,
		BatchSize:  j.cfg.BatchSize,
		CursorKey:  domain.Source.ImagesCursorKey,
	})
	return runner.Run(ctx, sources)
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

// Load upserts raw export rows newer than each source's load cursor.
func (j *Jobs) Load(ctx context.Context, store RecordStore, sources []domain.Source) pipeline.Report {
	runner := pipeline.New(j.log, j.cursors, csvfile.NewDirSource(j.cfg.RawDir), pipeline.Stages[domain.NormalizedRecord]{
		Transform: normalize.Records,
		Keep:      domain.NormalizedRecord.Persistable,
		Persist: func(ctx context.Context, _ domain.Source, batch []domain.NormalizedRecord) (domain.UpsertResult, error) {
			return store.UpsertBatch(ctx, batch)
		},
	}, pipeline.Config{
		Job:        "load",
		FetchLimit: j.cfg.FetchLimit,
		BatchSize:  j.cfg.BatchSize,
		CursorKey:  LoadCursorKey,
	})
	return runner.Run(ctx, sources)
}

// LoadCursorKey is the cursor key of the load job for src.
func LoadCursorKey(src domain.Source) string {
	return src.ID + "_load"
}

// LoadReport is the outcome of loading a cleaned table.
type LoadReport struct {
	Path string
	Read int
	domain.UpsertResult
}

// LoadCleaned upserts every row of a cleaned table in batches. Rows without
// a usable id are counted as rejected.
func (j *Jobs) LoadCleaned(ctx context.Context, store RecordStore, path string) (LoadReport, error) {
	report := LoadReport{Path: path}

	records, err := csvfile.ReadCleanedFile(path)
	if err != nil {
		return report, domain.NewSourceReadError(path, err)
	}
	report.Read = len(records)

	kept := persistable(records)
	report.Rejected = len(records) - len(kept)
	if report.Rejected > 0 {
		j.log.Warn("records rejected before persistence",
			slog.String("path", path),
			slog.Int("rejected", report.Rejected),
		)
	}

	batchSize := j.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = len(kept)
	}
	for start := 0; start < len(kept); start += batchSize {
		end := min(start+batchSize, len(kept))
		res, err := store.UpsertBatch(ctx, kept[start:end])
		if err != nil {
			return report, fmt.Errorf("load rows %d-%d: %w", start, end, err)
		}
		report.Add(res)
	}

	j.log.Info("cleaned table loaded",
		slog.String("path", path),
		slog.Int("read", report.Read),
		slog.Int("inserted", report.Inserted),
		slog.Int("skipped", report.Skipped),
		slog.Int("rejected", report.Rejected),
	)
	return report, nil
}

// ---------------------------------------------------------------------------
// Clean and merge
// ---------------------------------------------------------------------------

// CleanReport is the outcome of the clean job.
type CleanReport struct {
	Path       string
	Files      int
	Read       int
	Duplicates int
	WithIssues int
	Written    int
}

// Clean normalizes the raw exports of sources into one cleaned table. Rows
// repeated within a source are written once. Sources without an export are
// skipped.
func (j *Jobs) Clean(ctx context.Context, sources []domain.Source) (CleanReport, error) {
	report := CleanReport{Path: j.cfg.CleanedPath}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	paths, ids := j.existingExports(sources)
	report.Files = len(paths)

	items, err := merge.LoadAndMerge(paths, func(path string) ([]domain.RawItem, error) {
		return csvfile.ReadRawFile(path, ids[path])
	})
	if err != nil {
		return report, err
	}
	report.Read = len(items)

	items = merge.Dedupe(items, merge.RawKey)
	report.Duplicates = report.Read - len(items)

	records := normalize.Records(items)
	for _, rec := range records {
		if len(rec.Issues) > 0 {
			report.WithIssues++
		}
	}

	if err := csvfile.WriteCleanedFile(j.cfg.CleanedPath, records); err != nil {
		return report, domain.NewPersistenceError("write cleaned table", j.cfg.CleanedPath, err)
	}
	report.Written = len(records)

	j.log.Info("raw exports cleaned",
		slog.String("path", report.Path),
		slog.Int("files", report.Files),
		slog.Int("read", report.Read),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("with_issues", report.WithIssues),
		slog.Int("written", report.Written),
	)
	return report, nil
}

// MergeReport is the outcome of the merge job.
type MergeReport struct {
	Path       string
	Files      int
	Rows       int
	Duplicates int
}

// Merge concatenates the raw exports of sources, in source order, into the
// merged export. Every export must exist. With dedupe, repeated rows keep
// their first occurrence.
func (j *Jobs) Merge(ctx context.Context, sources []domain.Source, dedupe bool) (MergeReport, error) {
	report := MergeReport{Path: j.cfg.MergedPath, Files: len(sources)}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	paths := make([]string, 0, len(sources))
	ids := make(map[string]string, len(sources))
	for _, src := range sources {
		path := j.RawPath(src)
		paths = append(paths, path)
		ids[path] = src.ID
	}

	items, err := merge.LoadAndMerge(paths, func(path string) ([]domain.RawItem, error) {
		return csvfile.ReadRawFile(path, ids[path])
	})
	if err != nil {
		return report, err
	}

	if dedupe {
		before := len(items)
		items = merge.Dedupe(items, merge.RawKey)
		report.Duplicates = before - len(items)
	}
	report.Rows = len(items)

	if err := csvfile.WriteRawFile(j.cfg.MergedPath, items); err != nil {
		return report, domain.NewPersistenceError("write merged export", j.cfg.MergedPath, err)
	}

	j.log.Info("raw exports merged",
		slog.String("path", report.Path),
		slog.Int("files", report.Files),
		slog.Int("rows", report.Rows),
		slog.Int("duplicates", report.Duplicates),
	)
	return report, nil
}

func (j *Jobs) existingExports(sources []domain.Source) ([]string, map[string]string) {
	paths := make([]string, 0, len(sources))
	ids := make(map[string]string, len(sources))
	for _, src := range sources {
		path := j.RawPath(src)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			j.log.Warn("raw export missing, skipped", slog.String("source", src.ID), slog.String("path", path))
			continue
		}
		paths = append(paths, path)
		ids[path] = src.ID
	}
	return paths, ids
}

func persistable(recs []domain.NormalizedRecord) []domain.NormalizedRecord {
	kept := make([]domain.NormalizedRecord, 0, len(recs))
	for _, rec := range recs {
		if rec.Persistable() {
			kept = append(kept, rec)
		}
	}
	return kept
}

func identity[T any](items []T) []T { return items }
