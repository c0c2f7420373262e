package durable

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	apperrors "github.com/nestlog/tracker-server-go/internal/errors"
	"github.com/nestlog/tracker-server-go/internal/model"
)

// FileStore persists the session snapshot as a single JSON blob on disk.
// This is the default backend: device-local, synchronous, no daemon.
type FileStore struct {
	path string
}

func NewFileStore(dataDir, filename string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dataDir, filename)}, nil
}

func (s *FileStore) Load(ctx context.Context) (map[string]model.ActiveSession, []error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]model.ActiveSession), nil
	}
	if err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("failed to read session snapshot, treating as empty")
		return make(map[string]model.ActiveSession), []error{err}
	}
	return decodeSnapshot(data)
}

// SaveAll writes the snapshot atomically: a temp file in the same directory
// is renamed over the blob, so a crash mid-write cannot leave a torn file.
func (s *FileStore) SaveAll(ctx context.Context, sessions map[string]model.ActiveSession) error {
	data, err := encodeSnapshot(sessions)
	if err != nil {
		return apperrors.Storage("Failed to serialize sessions", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperrors.Storage("Failed to write session snapshot", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return apperrors.Storage("Failed to replace session snapshot", err)
	}
	return nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperrors.Storage("Failed to clear session snapshot", err)
	}
	return nil
}
