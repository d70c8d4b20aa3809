// Package merge concatenates per-source collections into one.
package merge

import (
	"github.com/heartmarshall/medchan-backend/internal/domain"
)

// Group is the output of one source.
type Group[T any] struct {
	Source string
	Items  []T
}

// Merge appends every group's items in group order, keeping the order inside
// each group. Nothing is dropped: duplicates across groups survive.
func Merge[T any](groups []Group[T]) []T {
	total := 0
	for _, g := range groups {
		total += len(g.Items)
	}

	out := make([]T, 0, total)
	for _, g := range groups {
		out = append(out, g.Items...)
	}
	return out
}

// Dedupe keeps the first item for every key, preserving order.
func Dedupe[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// RawItemKey is the Dedupe key of raw items.
type RawItemKey struct {
	SourceID string
	ItemID   int64
	RawID    string
}

// RawKey keys raw items by numeric id. Items without one fall back to their
// textual id so distinct malformed rows are not collapsed.
func RawKey(i domain.RawItem) RawItemKey {
	if i.ItemID > 0 {
		return RawItemKey{SourceID: i.SourceID, ItemID: i.ItemID}
	}
	return RawItemKey{SourceID: i.SourceID, RawID: i.RawID}
}

// Loader reads one per-source file.
type Loader[T any] func(path string) ([]T, error)

// LoadAndMerge loads every path in order and merges the results. The first
// unreadable file aborts the merge with a SourceReadError naming it.
func LoadAndMerge[T any](paths []string, load Loader[T]) ([]T, error) {
	groups := make([]Group[T], 0, len(paths))
	for _, path := range paths {
		items, err := load(path)
		if err != nil {
			return nil, domain.NewSourceReadError(path, err)
		}
		groups = append(groups, Group[T]{Source: path, Items: items})
	}
	return Merge(groups), nil
}
