// Package normalize turns raw channel messages into cleaned records.
// Every function here is pure and total: malformed input degrades to
// sentinel values and recorded issues, never to an error.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

var (
	newlineRunRe    = regexp.MustCompile(`[\r\n]+`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
	youTubeLinkRe   = regexp.MustCompile(`https?://(?:www\.)?(?:youtube\.com|youtu\.be)/\S+`)
)

// TimestampLayouts are tried in order when a raw timestamp is textual.
var TimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Record normalizes a single raw item.
func Record(item domain.RawItem) domain.NormalizedRecord {
	rec := domain.NormalizedRecord{
		ChannelTitle: strings.TrimSpace(item.ChannelTitle),
	}

	rec.SourceID, rec.ChannelUsername = channelIdentity(item)

	id, issue := itemID(item)
	rec.ItemID = id
	if issue != nil {
		rec.Issues = append(rec.Issues, *issue)
	}

	ts, issue := timestamp(item)
	rec.ObservedAt = ts
	if issue != nil {
		rec.Issues = append(rec.Issues, *issue)
	}

	rec.Text, rec.Emoji, rec.YouTubeLinks = Text(item.Body)

	return rec
}

// Records normalizes items preserving order.
func Records(items []domain.RawItem) []domain.NormalizedRecord {
	out := make([]domain.NormalizedRecord, 0, len(items))
	for _, item := range items {
		out = append(out, Record(item))
	}
	return out
}

// Text runs the message-body stages: sentinel for an absent body, newline
// collapse, emoji extraction and removal, YouTube link extraction and
// removal, then whitespace cleanup.
func Text(body *string) (text, emoji, links string) {
	if body == nil || strings.TrimSpace(*body) == "" {
		text = domain.NoMessage
	} else {
		text = *body
	}

	text = strings.TrimSpace(newlineRunRe.ReplaceAllString(text, " "))

	emoji, text = ExtractEmoji(text)
	if emoji == "" {
		emoji = domain.NoEmoji
	}

	links, text = ExtractYouTubeLinks(text)
	if links == "" {
		links = domain.NoYouTubeLink
	}

	text = strings.TrimSpace(whitespaceRunRe.ReplaceAllString(text, " "))

	return text, emoji, links
}

// ExtractYouTubeLinks returns every YouTube URL in text joined by ", " and
// the text with those URLs removed.
func ExtractYouTubeLinks(text string) (links, rest string) {
	matches := youTubeLinkRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return "", text
	}
	return strings.Join(matches, ", "), youTubeLinkRe.ReplaceAllString(text, "")
}

// ParseTimestamp tries every layout in TimestampLayouts.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range TimestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseItemID parses a textual id. Integral floats such as "123.0" are
// accepted since spreadsheet exports often write ids that way.
func ParseItemID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func channelIdentity(item domain.RawItem) (sourceID, username string) {
	sourceID = strings.TrimSpace(item.SourceID)
	rawUsername := strings.TrimSpace(item.ChannelUsername)

	if sourceID == "" {
		if src, err := domain.ParseSource(rawUsername); err == nil {
			sourceID = src.ID
		}
	}
	if sourceID == "" {
		return "", rawUsername
	}
	return sourceID, domain.Source{ID: sourceID}.Username()
}

func itemID(item domain.RawItem) (int64, *domain.FieldError) {
	if item.ItemID > 0 {
		return item.ItemID, nil
	}
	if item.RawID == "" {
		return 0, &domain.FieldError{Field: "item_id", Message: "missing"}
	}
	id, ok := ParseItemID(item.RawID)
	if !ok {
		return 0, &domain.FieldError{Field: "item_id", Message: "unparsable: " + item.RawID}
	}
	return id, nil
}

func timestamp(item domain.RawItem) (time.Time, *domain.FieldError) {
	if !item.Timestamp.IsZero() {
		return item.Timestamp, nil
	}
	if strings.TrimSpace(item.RawTimestamp) == "" {
		return time.Time{}, &domain.FieldError{Field: "timestamp", Message: "missing"}
	}
	ts, ok := ParseTimestamp(item.RawTimestamp)
	if !ok {
		return time.Time{}, &domain.FieldError{Field: "timestamp", Message: "unparsable: " + item.RawTimestamp}
	}
	return ts, nil
}
