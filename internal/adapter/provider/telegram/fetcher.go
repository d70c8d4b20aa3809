package telegram

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"strconv"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

// Fetcher pages through a channel preview, oldest first.
type Fetcher struct {
	client *Client
	log    *slog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client, log: client.log.With("component", "fetcher")}
}

// Fetch returns up to limit posts of src with an id above after, ascending.
// Paging stops once a page yields nothing new.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source, after int64, limit int) ([]domain.RawItem, error) {
	var (
		items  []domain.RawItem
		cursor = after
		pages  int
	)

	for len(items) < limit {
		page, err := f.fetchPage(ctx, src, cursor)
		if err != nil {
			return nil, domain.NewSourceReadError(src.ID, err)
		}
		pages++

		next := cursor
		for _, item := range page {
			if item.ItemID <= cursor {
				continue
			}
			items = append(items, item)
			next = max(next, item.ItemID)
		}
		if next == cursor {
			break
		}
		cursor = next
	}

	slices.SortFunc(items, func(a, b domain.RawItem) int {
		switch {
		case a.ItemID < b.ItemID:
			return -1
		case a.ItemID > b.ItemID:
			return 1
		}
		return 0
	})
	if len(items) > limit {
		items = items[:limit]
	}

	f.log.DebugContext(ctx, "channel fetched",
		slog.String("source", src.ID),
		slog.Int64("after", after),
		slog.Int("pages", pages),
		slog.Int("items", len(items)),
	)
	return items, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, src domain.Source, after int64) ([]domain.RawItem, error) {
	query := map[string]string{}
	if after > 0 {
		query["after"] = strconv.FormatInt(after, 10)
	}

	body, err := f.client.get(ctx, "/s/"+src.ID, query)
	if err != nil {
		return nil, err
	}
	return ParsePage(bytes.NewReader(body), src)
}
