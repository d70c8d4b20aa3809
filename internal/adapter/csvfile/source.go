package csvfile

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

// DirSource serves raw exports in a directory as a message source: the
// items of "<dir>/<source>_data.csv" newer than the cursor.
type DirSource struct {
	dir string
}

// NewDirSource creates a DirSource over dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Path returns the export path of a source.
func (s *DirSource) Path(src domain.Source) string {
	return filepath.Join(s.dir, RawFileName(src.ID))
}

// Fetch returns up to limit items with an id above after, ascending by id.
// A missing export yields no items; any other read failure is a
// SourceReadError.
func (s *DirSource) Fetch(ctx context.Context, src domain.Source, after int64, limit int) ([]domain.RawItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items, err := ReadRawFile(s.Path(src), src.ID)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewSourceReadError(src.ID, err)
	}

	newer := make([]domain.RawItem, 0, len(items))
	for _, item := range items {
		if item.ItemID > after {
			newer = append(newer, item)
		}
	}
	sort.SliceStable(newer, func(i, j int) bool { return newer[i].ItemID < newer[j].ItemID })

	if limit > 0 && len(newer) > limit {
		newer = newer[:limit]
	}
	return newer, nil
}
