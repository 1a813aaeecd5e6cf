package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// FileStore keeps every key in <Dir>/<key>.json.
//
// Writes go to a temp file that is renamed over the target, so a crash
// mid-write leaves the previous blob in place. Nothing is fsynced.
type FileStore struct {
	dir string
	log zerolog.Logger
}

// NewFileStore stores blobs under dir, creating it if needed. An empty dir
// means the working directory.
func NewFileStore(dir string, log zerolog.Logger) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", dir)
	}
	return &FileStore{dir: dir, log: log.With().Str("component", "filestore").Logger()}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load reads <dir>/<key>.json. A missing file is reported as not found.
func (s *FileStore) Load(ctx context.Context, key string) ([]int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read %s", s.path(key))
	}
	ids, err := decodeIDs(key, b)
	if err != nil {
		return nil, true, err
	}
	return ids, true, nil
}

func (s *FileStore) Save(ctx context.Context, key string, ids []int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := encodeIDs(ids)
	if err != nil {
		return err
	}
	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "replace %s", target)
	}
	s.log.Debug().Str("key", key).Int("count", len(ids)).Msg("blob saved")
	return nil
}
