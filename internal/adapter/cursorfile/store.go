// Package cursorfile keeps per-source cursors as small JSON files, one file
// per source named "<source>_last_id.json".
package cursorfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

const fileSuffix = "_last_id.json"

type fileContent struct {
	LastID int64 `json:"last_id"`
}

// Store is a directory of cursor files.
type Store struct {
	dir string
}

// New creates a Store rooted at dir. The directory is created on first Set.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Get returns the stored cursor of sourceID, or 0 when none was written yet.
func (s *Store) Get(ctx context.Context, sourceID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path, err := s.path(sourceID)
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, domain.NewPersistenceError("read cursor", sourceID, err)
	}

	var c fileContent
	if err := json.Unmarshal(data, &c); err != nil {
		return 0, domain.NewPersistenceError("decode cursor", sourceID, err)
	}
	return c.LastID, nil
}

// Set overwrites the cursor of sourceID. The new value is fsynced to a temp
// file and renamed over the old one, so a crash leaves either value intact.
func (s *Store) Set(ctx context.Context, sourceID string, lastID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(sourceID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(fileContent{LastID: lastID})
	if err != nil {
		return domain.NewPersistenceError("encode cursor", sourceID, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return domain.NewPersistenceError("create cursor dir", sourceID, err)
	}
	if err := writeAtomic(path, data); err != nil {
		return domain.NewPersistenceError("write cursor", sourceID, err)
	}
	return nil
}

func (s *Store) path(sourceID string) (string, error) {
	key := strings.TrimPrefix(strings.TrimSpace(sourceID), "@")
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", domain.NewValidationError("source_id", fmt.Sprintf("invalid cursor key %q", sourceID))
	}
	return filepath.Join(s.dir, key+fileSuffix), nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
