// Package csvfile reads and writes the pipeline's CSV exports: raw
// per-channel message dumps and the cleaned message table.
package csvfile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/medchan-backend/internal/domain"
	"github.com/heartmarshall/medchan-backend/internal/normalize"
)

// TimeLayout is used for every timestamp this package writes.
const TimeLayout = "2006-01-02 15:04:05-07:00"

// RawHeader is the header of a raw channel export.
var RawHeader = []string{"Channel Title", "Channel Username", "ID", "Message", "Date"}

// RawFileName returns the export file name of a source, e.g. "DoctorsET_data.csv".
func RawFileName(sourceID string) string {
	return sourceID + "_data.csv"
}

// ReadRaw parses a raw export. Columns are matched by header name so column
// order does not matter. sourceID is used for rows whose channel username
// is blank or invalid.
func ReadRaw(r io.Reader, sourceID string) ([]domain.RawItem, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := columnIndex(header, RawHeader)
	if err != nil {
		return nil, err
	}

	var items []domain.RawItem
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if isBlank(record) {
			continue
		}

		get := func(name string) string { return field(record, cols[name]) }

		item := domain.RawItem{
			SourceID:        sourceID,
			RawID:           strings.TrimSpace(get("ID")),
			ChannelTitle:    get("Channel Title"),
			ChannelUsername: get("Channel Username"),
			RawTimestamp:    get("Date"),
		}
		if src, err := domain.ParseSource(item.ChannelUsername); err == nil {
			item.SourceID = src.ID
		}
		if id, ok := normalize.ParseItemID(item.RawID); ok {
			item.ItemID = id
		}
		if msg := get("Message"); msg != "" {
			item.Body = &msg
		}

		items = append(items, item)
	}

	return items, nil
}

// WriteRaw writes items as a raw export, header first.
func WriteRaw(w io.Writer, items []domain.RawItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RawHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := writeRawRows(cw, items); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// ReadRawFile reads a raw export from disk.
func ReadRawFile(path, sourceID string) ([]domain.RawItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	items, err := ReadRaw(f, sourceID)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return items, nil
}

// WriteRawFile replaces path with a raw export of items.
func WriteRawFile(path string, items []domain.RawItem) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteRaw(f, items); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// AppendRawFile appends items to a raw export, writing the header when the
// file does not exist yet.
func AppendRawFile(path string, items []domain.RawItem) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if isNew {
		if err := cw.Write(RawHeader); err != nil {
			f.Close()
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := writeRawRows(cw, items); err != nil {
		f.Close()
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeRawRows(cw *csv.Writer, items []domain.RawItem) error {
	for _, item := range items {
		id := item.RawID
		if item.ItemID > 0 {
			id = strconv.FormatInt(item.ItemID, 10)
		}
		date := formatTime(item.Timestamp)
		if date == "" {
			date = item.RawTimestamp
		}
		body := ""
		if item.Body != nil {
			body = *item.Body
		}
		username := item.ChannelUsername
		if username == "" && item.SourceID != "" {
			username = domain.Source{ID: item.SourceID}.Username()
		}

		if err := cw.Write([]string{item.ChannelTitle, username, id, body, date}); err != nil {
			return fmt.Errorf("write row %s: %w", id, err)
		}
	}
	return nil
}

func columnIndex(header, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	cols := make(map[string]int, len(required))
	var missing []string
	for _, name := range required {
		i, ok := idx[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	ch, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if ch != '\uFEFF' {
		_ = br.UnreadRune()
	}
	return br
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}
