package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore keeps the notes list in a single JSON array file, rewritten
// whole on every append. The in-memory list mirrors the file so Append does
// not re-read it; the store is the only writer (single-turn rule upstream).
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	loaded bool
	cache  []Note
}

func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Load(_ context.Context) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make([]Note, len(s.cache))
	copy(out, s.cache)
	return out, nil
}

func (s *FileStore) Append(_ context.Context, n Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.cache = append(s.cache, n)
	if err := writeJSONFile(s.path, s.cache); err != nil {
		s.cache = s.cache[:len(s.cache)-1]
		return fmt.Errorf("persist notes: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read notes file: %w", err)
	}
	var items []Note
	if err := json.Unmarshal(data, &items); err != nil {
		// Availability over strict durability of malformed data: start empty.
		s.logger.Warn("notes file is corrupted, starting with an empty list",
			zap.String("path", s.path), zap.Error(err))
		s.loaded = true
		return nil
	}
	s.cache = items
	s.loaded = true
	return nil
}

// writeJSONFile rewrites the target atomically via a temp file rename so a
// crash mid-write never leaves a truncated store behind.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
