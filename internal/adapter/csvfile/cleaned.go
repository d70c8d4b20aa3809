package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/heartmarshall/medchan-backend/internal/domain"
	"github.com/heartmarshall/medchan-backend/internal/normalize"
)

// CleanedHeader is the header of the cleaned message table. Column names
// match the record table.
var CleanedHeader = []string{
	"channel_title",
	"channel_username",
	"message_id",
	"message",
	"message_date",
	"emoji_used",
	"youtube_links",
}

// ReadCleaned parses a cleaned table. Rows with an unparsable message_id
// keep ItemID 0 and carry an issue.
func ReadCleaned(r io.Reader) ([]domain.NormalizedRecord, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := columnIndex(header, CleanedHeader)
	if err != nil {
		return nil, err
	}

	var records []domain.NormalizedRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if isBlank(row) {
			continue
		}

		get := func(name string) string { return field(row, cols[name]) }

		rec := domain.NormalizedRecord{
			ChannelTitle:    get("channel_title"),
			ChannelUsername: strings.TrimSpace(get("channel_username")),
			Text:            get("message"),
			Emoji:           get("emoji_used"),
			YouTubeLinks:    get("youtube_links"),
		}
		if src, err := domain.ParseSource(rec.ChannelUsername); err == nil {
			rec.SourceID = src.ID
			rec.ChannelUsername = src.Username()
		}

		rawID := get("message_id")
		if id, ok := normalize.ParseItemID(rawID); ok {
			rec.ItemID = id
		} else {
			rec.Issues = append(rec.Issues, domain.FieldError{Field: "item_id", Message: "unparsable: " + rawID})
		}

		if date := get("message_date"); date != "" {
			if ts, ok := normalize.ParseTimestamp(date); ok {
				rec.ObservedAt = ts
			} else {
				rec.Issues = append(rec.Issues, domain.FieldError{Field: "timestamp", Message: "unparsable: " + date})
			}
		}

		if rec.Emoji == "" {
			rec.Emoji = domain.NoEmoji
		}
		if rec.YouTubeLinks == "" {
			rec.YouTubeLinks = domain.NoYouTubeLink
		}

		records = append(records, rec)
	}

	return records, nil
}

// WriteCleaned writes records as a cleaned table, header first.
// Unknown timestamps are written as empty cells.
func WriteCleaned(w io.Writer, records []domain.NormalizedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CleanedHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.ChannelTitle,
			rec.ChannelUsername,
			strconv.FormatInt(rec.ItemID, 10),
			rec.Text,
			formatTime(rec.ObservedAt),
			rec.Emoji,
			rec.YouTubeLinks,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", rec.ItemID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCleanedFile reads a cleaned table from disk.
func ReadCleanedFile(path string) ([]domain.NormalizedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadCleaned(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

// WriteCleanedFile replaces path with a cleaned table of records.
func WriteCleanedFile(path string, records []domain.NormalizedRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCleaned(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
