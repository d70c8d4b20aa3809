// Package pipeline runs incremental ingestion jobs: for every source, read
// the cursor, fetch newer items, transform them, persist them, and only
// then advance the cursor.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

// State is the position of one source run in the ingestion state machine.
type State string

const (
	StateIdle           State = "IDLE"
	StateFetching       State = "FETCHING"
	StateNormalizing    State = "NORMALIZING"
	StatePersisting     State = "PERSISTING"
	StateCursorAdvanced State = "CURSOR_ADVANCED"
	StateFailed         State = "FAILED"
)

const (
	defaultBatchSize  = 500
	defaultFetchLimit = 1000
)

// CursorStore keeps the last processed item id per cursor key.
type CursorStore interface {
	Get(ctx context.Context, key string) (int64, error)
	Set(ctx context.Context, key string, lastID int64) error
}

// Fetcher returns items of src with an id above after, at most limit.
type Fetcher interface {
	Fetch(ctx context.Context, src domain.Source, after int64, limit int) ([]domain.RawItem, error)
}

// Stages are the job-specific steps of a Runner.
type Stages[T any] struct {
	// Transform maps fetched items to persistable values. Required.
	Transform func(items []domain.RawItem) []T
	// Keep filters transformed values; dropped values count as rejected.
	// Nil keeps everything.
	Keep func(T) bool
	// Persist writes one batch. Required.
	Persist func(ctx context.Context, src domain.Source, batch []T) (domain.UpsertResult, error)
}

// Config holds Runner settings.
type Config struct {
	// Job names the run in logs and reports.
	Job        string
	FetchLimit int
	BatchSize  int
	// CursorKey maps a source to its cursor key. Nil uses the source id.
	CursorKey func(domain.Source) string
}

// SourceResult is the outcome of one source run.
type SourceResult struct {
	Source       string
	State        State
	FailedAt     State
	Fetched      int
	Inserted     int
	Skipped      int
	Rejected     int
	CursorBefore int64
	CursorAfter  int64
	Duration     time.Duration
	Err          error
}

// Report is the outcome of a Run.
type Report struct {
	Job      string
	Results  []SourceResult
	Duration time.Duration
}

// HasErrors returns true if any source failed.
func (r Report) HasErrors() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return true
		}
	}
	return false
}

// Totals sums the counters of every source.
func (r Report) Totals() SourceResult {
	total := SourceResult{Source: "total"}
	for _, res := range r.Results {
		total.Fetched += res.Fetched
		total.Inserted += res.Inserted
		total.Skipped += res.Skipped
		total.Rejected += res.Rejected
	}
	return total
}

// Runner processes sources one at a time. A failed source leaves its cursor
// untouched and never stops the others.
type Runner[T any] struct {
	log     *slog.Logger
	cursors CursorStore
	fetcher Fetcher
	stages  Stages[T]
	cfg     Config
}

// New creates a Runner.
func New[T any](log *slog.Logger, cursors CursorStore, fetcher Fetcher, stages Stages[T], cfg Config) *Runner[T] {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = defaultFetchLimit
	}
	if cfg.CursorKey == nil {
		cfg.CursorKey = func(s domain.Source) string { return s.ID }
	}
	return &Runner[T]{
		log:     log.With("job", cfg.Job),
		cursors: cursors,
		fetcher: fetcher,
		stages:  stages,
		cfg:     cfg,
	}
}

// Run processes every source in order and reports per-source outcomes.
func (r *Runner[T]) Run(ctx context.Context, sources []domain.Source) Report {
	start := time.Now()
	report := Report{Job: r.cfg.Job, Results: make([]SourceResult, 0, len(sources))}

	for _, src := range sources {
		res := r.runSource(ctx, src)
		report.Results = append(report.Results, res)

		if res.Err != nil {
			r.log.Error("source failed",
				slog.String("source", src.ID),
				slog.String("state", string(res.FailedAt)),
				slog.Int64("cursor", res.CursorBefore),
				slog.String("error", res.Err.Error()),
			)
			continue
		}
		r.log.Info("source completed",
			slog.String("source", src.ID),
			slog.Int("fetched", res.Fetched),
			slog.Int("inserted", res.Inserted),
			slog.Int("skipped", res.Skipped),
			slog.Int("rejected", res.Rejected),
			slog.Int64("cursor_before", res.CursorBefore),
			slog.Int64("cursor_after", res.CursorAfter),
			slog.Duration("duration", res.Duration),
		)
	}

	report.Duration = time.Since(start)
	r.log.Info("run completed", slog.Int("sources", len(sources)), slog.Duration("duration", report.Duration))
	return report
}

func (r *Runner[T]) runSource(ctx context.Context, src domain.Source) (res SourceResult) {
	start := time.Now()
	res = SourceResult{Source: src.ID, State: StateIdle}
	defer func() { res.Duration = time.Since(start) }()

	fail := func(err error) SourceResult {
		res.FailedAt = res.State
		res.State = StateFailed
		res.Err = err
		return res
	}

	key := r.cfg.CursorKey(src)
	before, err := r.cursors.Get(ctx, key)
	if err != nil {
		return fail(fmt.Errorf("get cursor %s: %w", key, err))
	}
	res.CursorBefore = before
	res.CursorAfter = before

	res.State = StateFetching
	items, err := r.fetcher.Fetch(ctx, src, before, r.cfg.FetchLimit)
	if err != nil {
		return fail(fmt.Errorf("fetch: %w", err))
	}
	items = dropStale(items, before)
	res.Fetched = len(items)

	if len(items) == 0 {
		r.log.Debug("no new items", slog.String("source", src.ID), slog.Int64("cursor", before))
		res.State = StateCursorAdvanced
		return res
	}

	res.State = StateNormalizing
	values := r.stages.Transform(items)
	values, rejected := r.keep(values)
	res.Rejected = rejected
	if rejected > 0 {
		r.log.Warn("records rejected before persistence",
			slog.String("source", src.ID),
			slog.Int("rejected", rejected),
		)
	}

	res.State = StatePersisting
	var stats domain.UpsertResult
	err = batchProcess(values, r.cfg.BatchSize, func(batch []T) error {
		s, err := r.stages.Persist(ctx, src, batch)
		if err != nil {
			return err
		}
		stats.Add(s)
		return nil
	})
	res.Inserted = stats.Inserted
	res.Skipped = stats.Skipped
	res.Rejected += stats.Rejected
	if err != nil {
		return fail(fmt.Errorf("persist: %w", err))
	}

	after := maxItemID(items, before)
	if after > before {
		if err := r.cursors.Set(ctx, key, after); err != nil {
			return fail(fmt.Errorf("set cursor %s: %w", key, err))
		}
	}
	res.CursorAfter = after
	res.State = StateCursorAdvanced
	return res
}

func (r *Runner[T]) keep(values []T) ([]T, int) {
	if r.stages.Keep == nil {
		return values, 0
	}
	kept := values[:0:0]
	for _, v := range values {
		if r.stages.Keep(v) {
			kept = append(kept, v)
		}
	}
	return kept, len(values) - len(kept)
}

// dropStale removes items a misbehaving fetcher returned at or below the
// cursor. Items without a numeric id pass through to be rejected later.
func dropStale(items []domain.RawItem, cursor int64) []domain.RawItem {
	fresh := items[:0:0]
	for _, item := range items {
		if item.ItemID > 0 && item.ItemID <= cursor {
			continue
		}
		fresh = append(fresh, item)
	}
	return fresh
}

func maxItemID(items []domain.RawItem, floor int64) int64 {
	m := floor
	for _, item := range items {
		if item.ItemID > m {
			m = item.ItemID
		}
	}
	return m
}

// batchProcess splits items into batches and processes each via fn,
// stopping at the first error.
func batchProcess[T any](items []T, batchSize int, fn func([]T) error) error {
	if len(items) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		if err := fn(items[i:end]); err != nil {
			return err
		}
	}
	return nil
}
