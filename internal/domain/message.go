package domain

import (
	"strings"
	"time"
)

// Sentinels substituted for absent or unextractable message fields.
const (
	NoMessage     = "No Message"
	NoEmoji       = "No emoji"
	NoYouTubeLink = "No YouTube link"
)

// MediaKind classifies a message attachment.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
)

// MediaRef points at a downloadable attachment of a raw item.
type MediaRef struct {
	Kind MediaKind
	URL  string
}

// RawItem is a message as delivered by a source, before any cleanup.
// ItemID is 0 when the source could not supply a numeric id; RawID then
// carries the original textual value.
type RawItem struct {
	SourceID        string
	ItemID          int64
	RawID           string
	ChannelTitle    string
	ChannelUsername string
	Timestamp       time.Time
	RawTimestamp    string
	Body            *string
	Media           *MediaRef
}

// HasPhoto reports whether the item carries a photo attachment.
func (i RawItem) HasPhoto() bool {
	return i.Media != nil && i.Media.Kind == MediaPhoto && i.Media.URL != ""
}

// NormalizedRecord is a cleaned message ready for persistence.
// The natural key is (SourceID, ItemID).
type NormalizedRecord struct {
	SourceID        string
	ItemID          int64
	ChannelTitle    string
	ChannelUsername string
	Text            string
	Emoji           string
	YouTubeLinks    string
	ObservedAt      time.Time

	// Issues lists fields that were degraded to a sentinel or zero value.
	Issues []FieldError
}

// Key returns the natural key of the record.
func (r NormalizedRecord) Key() RecordKey {
	return RecordKey{SourceID: r.SourceID, ItemID: r.ItemID}
}

// Persistable reports whether the record has a usable natural key.
// Records whose id could not be parsed are kept in exports but never stored.
func (r NormalizedRecord) Persistable() bool {
	return r.ItemID > 0
}

// Links splits YouTubeLinks back into individual URLs.
// Returns nil when the sentinel is stored.
func (r NormalizedRecord) Links() []string {
	if r.YouTubeLinks == "" || r.YouTubeLinks == NoYouTubeLink {
		return nil
	}
	return strings.Split(r.YouTubeLinks, ", ")
}

// RecordKey is the natural key of a NormalizedRecord.
type RecordKey struct {
	SourceID string
	ItemID   int64
}

// StoredMessage is a NormalizedRecord as read back from the record table.
type StoredMessage struct {
	ID int64
	NormalizedRecord
	CreatedAt time.Time
}

// UpsertResult summarizes an insert-or-ignore batch. Rejected counts records
// a persist step dropped because they cannot be stored.
type UpsertResult struct {
	Inserted int
	Skipped  int
	Rejected int
}

// Add accumulates another result.
func (r *UpsertResult) Add(o UpsertResult) {
	r.Inserted += o.Inserted
	r.Skipped += o.Skipped
	r.Rejected += o.Rejected
}

// Paging limits shared by the list endpoints.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// MessageFilter selects stored messages. An empty Channel matches every
// channel.
type MessageFilter struct {
	Channel string
	Offset  int
	Limit   int
}
