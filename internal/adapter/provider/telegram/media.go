package telegram

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

// MediaDownloader stores post photos as <dir>/<channel>/<item_id>.jpg.
type MediaDownloader struct {
	client *Client
	dir    string
	log    *slog.Logger
}

// NewMediaDownloader creates a MediaDownloader writing under dir.
func NewMediaDownloader(client *Client, dir string) *MediaDownloader {
	return &MediaDownloader{client: client, dir: dir, log: client.log.With("component", "media")}
}

// Path returns the file an item's photo is stored in.
func (d *MediaDownloader) Path(item domain.RawItem) string {
	return filepath.Join(d.dir, item.SourceID, strconv.FormatInt(item.ItemID, 10)+".jpg")
}

// Save downloads the photos of items. Items without a photo and photos
// already on disk count as skipped. The first failed download aborts.
func (d *MediaDownloader) Save(ctx context.Context, src domain.Source, items []domain.RawItem) (domain.UpsertResult, error) {
	var res domain.UpsertResult
	for _, item := range items {
		if !item.HasPhoto() || item.ItemID <= 0 {
			res.Skipped++
			continue
		}

		saved, err := d.download(ctx, item)
		if err != nil {
			return res, domain.NewPersistenceError("save photo", src.ID, err)
		}
		if saved {
			res.Inserted++
		} else {
			res.Skipped++
		}
	}
	return res, nil
}

func (d *MediaDownloader) download(ctx context.Context, item domain.RawItem) (bool, error) {
	path := d.Path(item)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	body, err := d.client.get(ctx, item.Media.URL, nil)
	if err != nil {
		return false, fmt.Errorf("download %d: %w", item.ItemID, err)
	}

	if err := writeFileAtomic(path, body); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}

	d.log.DebugContext(ctx, "photo saved",
		slog.String("source", item.SourceID),
		slog.Int64("item_id", item.ItemID),
		slog.Int("bytes", len(body)),
	)
	return true, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".photo-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
