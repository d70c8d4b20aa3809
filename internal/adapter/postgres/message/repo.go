// Package message implements the record table repository on PostgreSQL.
package message

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/medchan-backend/internal/adapter/postgres"
	"github.com/heartmarshall/medchan-backend/internal/domain"
)

const table = "telegram_medical_messages"

var insertColumns = []string{
	"channel_title", "channel_username", "message_id", "message",
	"message_date", "emoji_used", "youtube_links",
}

var selectColumns = []string{
	"id", "channel_title", "channel_username", "message_id", "message",
	"message_date", "emoji_used", "youtube_links", "created_at",
}

// Repo provides insert-or-ignore writes and paged reads of messages.
type Repo struct {
	pool *pgxpool.Pool
	txm  *postgres.TxManager
}

// New creates a new message repository.
func New(pool *pgxpool.Pool, txm *postgres.TxManager) *Repo {
	return &Repo{pool: pool, txm: txm}
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

// Upsert inserts rec unless a row with the same (channel_username,
// message_id) exists. inserted is false when the row was already present.
func (r *Repo) Upsert(ctx context.Context, rec domain.NormalizedRecord) (bool, error) {
	query, args, err := insertQuery(rec)
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return false, domain.NewPersistenceError("upsert message", rec.SourceID,
			postgres.MapError(err, "message", rec.Key().ItemID))
	}
	return tag.RowsAffected() > 0, nil
}

// UpsertBatch inserts recs in one transaction. Rows that collide with an
// existing row, or with an earlier row of the same batch, are skipped.
// Any other failure rolls back the whole batch.
func (r *Repo) UpsertBatch(ctx context.Context, recs []domain.NormalizedRecord) (domain.UpsertResult, error) {
	if len(recs) == 0 {
		return domain.UpsertResult{}, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range recs {
		query, args, err := insertQuery(rec)
		if err != nil {
			return domain.UpsertResult{}, fmt.Errorf("build insert: %w", err)
		}
		batch.Queue(query, args...)
	}

	var inserted int
	err := r.txm.RunInTx(ctx, func(ctx context.Context) error {
		n, err := postgres.SendBatchExec(ctx, postgres.QuerierFromCtx(ctx, r.pool), batch)
		if err != nil {
			return postgres.MapError(err, "message batch", recs[0].SourceID)
		}
		inserted = n
		return nil
	})
	if err != nil {
		return domain.UpsertResult{}, domain.NewPersistenceError("upsert batch", recs[0].SourceID, err)
	}

	return domain.UpsertResult{Inserted: inserted, Skipped: len(recs) - inserted}, nil
}

func insertQuery(rec domain.NormalizedRecord) (string, []any, error) {
	return postgres.Builder.
		Insert(table).
		Columns(insertColumns...).
		Values(
			rec.ChannelTitle,
			rec.ChannelUsername,
			rec.ItemID,
			rec.Text,
			nullTime(rec.ObservedAt),
			rec.Emoji,
			rec.YouTubeLinks,
		).
		Suffix("ON CONFLICT (channel_username, message_id) DO NOTHING").
		ToSql()
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// List returns a page of messages ordered by (channel_username, message_id).
func (r *Repo) List(ctx context.Context, filter domain.MessageFilter) ([]domain.StoredMessage, error) {
	qb := postgres.Builder.
		Select(selectColumns...).
		From(table).
		OrderBy("channel_username", "message_id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))
	if filter.Channel != "" {
		qb = qb.Where("channel_username = ?", filter.Channel)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "messages", filter.Channel)
	}
	defer rows.Close()

	var out []domain.StoredMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, postgres.MapError(err, "messages", filter.Channel)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "messages", filter.Channel)
	}
	return out, nil
}

// GetByKey returns the message stored under the natural key.
func (r *Repo) GetByKey(ctx context.Context, channelUsername string, messageID int64) (domain.StoredMessage, error) {
	query, args, err := postgres.Builder.
		Select(selectColumns...).
		From(table).
		Where("channel_username = ? AND message_id = ?", channelUsername, messageID).
		ToSql()
	if err != nil {
		return domain.StoredMessage{}, fmt.Errorf("build select: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	m, err := scanMessage(row)
	if err != nil {
		return domain.StoredMessage{}, postgres.MapError(err, "message", fmt.Sprintf("%s/%d", channelUsername, messageID))
	}
	return m, nil
}

// Count returns the number of stored messages, optionally for one channel.
func (r *Repo) Count(ctx context.Context, channel string) (int, error) {
	qb := postgres.Builder.Select("count(*)").From(table)
	if channel != "" {
		qb = qb.Where("channel_username = ?", channel)
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "messages", channel)
	}
	return n, nil
}

func scanMessage(row pgx.Row) (domain.StoredMessage, error) {
	var (
		m    domain.StoredMessage
		date *time.Time
	)
	err := row.Scan(
		&m.ID,
		&m.ChannelTitle,
		&m.ChannelUsername,
		&m.ItemID,
		&m.Text,
		&date,
		&m.Emoji,
		&m.YouTubeLinks,
		&m.CreatedAt,
	)
	if err != nil {
		return domain.StoredMessage{}, err
	}
	if date != nil {
		m.ObservedAt = *date
	}
	if src, err := domain.ParseSource(m.ChannelUsername); err == nil {
		m.SourceID = src.ID
	}
	return m, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
