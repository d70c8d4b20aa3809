package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

const (
	messageTable = "telegram_medical_messages"
	timeLayout   = time.RFC3339Nano
)

var messageColumns = []string{
	"id", "channel_title", "channel_username", "message_id", "message",
	"message_date", "emoji_used", "youtube_links", "created_at",
}

// MessageStore provides insert-or-ignore writes and paged reads of messages.
type MessageStore struct {
	db *sql.DB
}

// NewMessageStore creates a MessageStore on an opened database.
func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Upsert inserts rec unless its natural key already exists.
func (s *MessageStore) Upsert(ctx context.Context, rec domain.NormalizedRecord) (bool, error) {
	res, err := upsertQuery(rec).RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return false, domain.NewPersistenceError("upsert message", rec.SourceID, mapError(err, "message", rec.ItemID))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.NewPersistenceError("upsert message", rec.SourceID, err)
	}
	return n > 0, nil
}

// UpsertBatch inserts recs in one transaction, skipping rows whose natural
// key already exists. Any other failure rolls back the whole batch.
func (s *MessageStore) UpsertBatch(ctx context.Context, recs []domain.NormalizedRecord) (domain.UpsertResult, error) {
	if len(recs) == 0 {
		return domain.UpsertResult{}, nil
	}
	source := recs[0].SourceID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.UpsertResult{}, domain.NewPersistenceError("begin batch", source, err)
	}

	var inserted int
	for _, rec := range recs {
		res, err := upsertQuery(rec).RunWith(tx).ExecContext(ctx)
		if err != nil {
			_ = tx.Rollback()
			return domain.UpsertResult{}, domain.NewPersistenceError("upsert batch", source, mapError(err, "message", rec.ItemID))
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return domain.UpsertResult{}, domain.NewPersistenceError("upsert batch", source, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return domain.UpsertResult{}, domain.NewPersistenceError("commit batch", source, err)
	}
	return domain.UpsertResult{Inserted: inserted, Skipped: len(recs) - inserted}, nil
}

func upsertQuery(rec domain.NormalizedRecord) squirrel.InsertBuilder {
	var date any
	if !rec.ObservedAt.IsZero() {
		date = rec.ObservedAt.UTC().Format(timeLayout)
	}
	return Builder.
		Insert(messageTable).
		Columns("channel_title", "channel_username", "message_id", "message",
			"message_date", "emoji_used", "youtube_links").
		Values(rec.ChannelTitle, rec.ChannelUsername, rec.ItemID, rec.Text,
			date, rec.Emoji, rec.YouTubeLinks).
		Suffix("ON CONFLICT (channel_username, message_id) DO NOTHING")
}

// List returns a page of messages ordered by (channel_username, message_id).
func (s *MessageStore) List(ctx context.Context, filter domain.MessageFilter) ([]domain.StoredMessage, error) {
	qb := Builder.
		Select(messageColumns...).
		From(messageTable).
		OrderBy("channel_username", "message_id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))
	if filter.Channel != "" {
		qb = qb.Where(squirrel.Eq{"channel_username": filter.Channel})
	}

	rows, err := qb.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, mapError(err, "messages", filter.Channel)
	}
	defer rows.Close()

	var out []domain.StoredMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, mapError(err, "messages", filter.Channel)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "messages", filter.Channel)
	}
	return out, nil
}

// GetByKey returns the message stored under the natural key.
func (s *MessageStore) GetByKey(ctx context.Context, channelUsername string, messageID int64) (domain.StoredMessage, error) {
	row := Builder.
		Select(messageColumns...).
		From(messageTable).
		Where(squirrel.Eq{"channel_username": channelUsername, "message_id": messageID}).
		RunWith(s.db).
		QueryRowContext(ctx)

	m, err := scanMessage(row)
	if err != nil {
		return domain.StoredMessage{}, mapError(err, "message", fmt.Sprintf("%s/%d", channelUsername, messageID))
	}
	return m, nil
}

// Count returns the number of stored messages, optionally for one channel.
func (s *MessageStore) Count(ctx context.Context, channel string) (int, error) {
	qb := Builder.Select("count(*)").From(messageTable)
	if channel != "" {
		qb = qb.Where(squirrel.Eq{"channel_username": channel})
	}
	var n int
	if err := qb.RunWith(s.db).QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, mapError(err, "messages", channel)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (domain.StoredMessage, error) {
	var (
		m         domain.StoredMessage
		date      sql.NullString
		createdAt string
	)
	err := row.Scan(&m.ID, &m.ChannelTitle, &m.ChannelUsername, &m.ItemID, &m.Text,
		&date, &m.Emoji, &m.YouTubeLinks, &createdAt)
	if err != nil {
		return domain.StoredMessage{}, err
	}

	if date.Valid {
		if m.ObservedAt, err = time.Parse(timeLayout, date.String); err != nil {
			return domain.StoredMessage{}, fmt.Errorf("parse message_date: %w", err)
		}
	}
	if m.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return domain.StoredMessage{}, fmt.Errorf("parse created_at: %w", err)
	}
	if src, err := domain.ParseSource(m.ChannelUsername); err == nil {
		m.SourceID = src.ID
	}
	return m, nil
}
