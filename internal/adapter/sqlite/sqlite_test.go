package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/medchan-backend/internal/adapter/sqlite"
	"github.com/heartmarshall/medchan-backend/internal/domain"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "medchan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func makeRecord(source string, id int64) domain.NormalizedRecord {
	return domain.NormalizedRecord{
		SourceID:        source,
		ItemID:          id,
		ChannelTitle:    "Test Channel",
		ChannelUsername: "@" + source,
		Text:            "Amoxicillin in stock",
		Emoji:           "💊",
		YouTubeLinks:    "https://youtu.be/abc",
		ObservedAt:      time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestOpen_MigrateIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "medchan.db")

	db, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()
	assert.NoError(t, sqlite.Migrate(context.Background(), db))
}

func TestMessageStore_UpsertIgnoresExisting(t *testing.T) {
	t.Parallel()
	store := sqlite.NewMessageStore(openDB(t))
	ctx := context.Background()
	rec := makeRecord("DoctorsET", 42)

	inserted, err := store.Upsert(ctx, rec)
	require.NoError(t, err)
	assert.True(t, inserted)

	rec.Text = "overwritten?"
	inserted, err = store.Upsert(ctx, rec)
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := store.GetByKey(ctx, "@DoctorsET", 42)
	require.NoError(t, err)
	assert.Equal(t, "Amoxicillin in stock", got.Text)
	assert.Equal(t, "DoctorsET", got.SourceID)
	assert.True(t, got.ObservedAt.Equal(rec.ObservedAt))
	assert.False(t, got.CreatedAt.IsZero())
}

func TestMessageStore_UpsertBatch(t *testing.T) {
	t.Parallel()
	store := sqlite.NewMessageStore(openDB(t))
	ctx := context.Background()

	res, err := store.UpsertBatch(ctx, []domain.NormalizedRecord{
		makeRecord("A", 1), makeRecord("A", 1), makeRecord("A", 2),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertResult{Inserted: 2, Skipped: 1}, res)

	res, err = store.UpsertBatch(ctx, []domain.NormalizedRecord{makeRecord("A", 2), makeRecord("A", 3)})
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertResult{Inserted: 1, Skipped: 1}, res)

	n, err := store.Count(ctx, "@A")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMessageStore_UpsertBatch_RollsBackOnFailure(t *testing.T) {
	t.Parallel()
	store := sqlite.NewMessageStore(openDB(t))
	ctx := context.Background()

	_, err := store.UpsertBatch(ctx, []domain.NormalizedRecord{makeRecord("B", 1), makeRecord("B", 0)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPersistence))
	assert.True(t, errors.Is(err, domain.ErrValidation))

	n, err := store.Count(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMessageStore_ListOrderAndFilter(t *testing.T) {
	t.Parallel()
	store := sqlite.NewMessageStore(openDB(t))
	ctx := context.Background()

	noDate := makeRecord("B", 1)
	noDate.ObservedAt = time.Time{}
	_, err := store.UpsertBatch(ctx, []domain.NormalizedRecord{
		makeRecord("B", 2), noDate, makeRecord("A", 9),
	})
	require.NoError(t, err)

	all, err := store.List(ctx, domain.MessageFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "@A", all[0].ChannelUsername)
	assert.Equal(t, int64(1), all[1].ItemID)
	assert.True(t, all[1].ObservedAt.IsZero())
	assert.Equal(t, int64(2), all[2].ItemID)

	onlyB, err := store.List(ctx, domain.MessageFilter{Channel: "@B", Offset: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, onlyB, 1)
	assert.Equal(t, int64(2), onlyB[0].ItemID)
}

func TestMessageStore_GetByKey_NotFound(t *testing.T) {
	t.Parallel()
	store := sqlite.NewMessageStore(openDB(t))

	_, err := store.GetByKey(context.Background(), "@nobody", 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDetectionStore_CreateAndList(t *testing.T) {
	t.Parallel()
	store := sqlite.NewDetectionStore(openDB(t))
	ctx := context.Background()

	for _, class := range []string{"pill", "syringe", "bottle"} {
		_, err := store.Create(ctx, domain.Detection{
			BoundingBox: []int{1, 2, 3, 4},
			Confidence:  0.5,
			ClassID:     1,
			ClassName:   class,
			ImagePath:   "images/a/1.jpg",
		})
		require.NoError(t, err)
	}

	page, err := store.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(2), page[0].ID)
	assert.Equal(t, "syringe", page[0].ClassName)
	assert.Equal(t, []int{1, 2, 3, 4}, page[0].BoundingBox)
	assert.False(t, page[0].CreatedAt.IsZero())

	empty, err := store.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDetectionStore_CheckConstraint(t *testing.T) {
	t.Parallel()
	store := sqlite.NewDetectionStore(openDB(t))

	_, err := store.Create(context.Background(), domain.Detection{
		BoundingBox: []int{1, 2, 3, 4},
		Confidence:  -0.1,
		ClassName:   "pill",
		ImagePath:   "x.jpg",
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
