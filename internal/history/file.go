package history

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

// FileStore keeps history in a single JSON array file, rewritten whole on
// every save.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Load(_ context.Context) ([]StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var msgs []StoredMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		// Availability over strict durability of malformed data: start empty.
		s.logger.Warn("history file is corrupted, starting with an empty history",
			zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}
	return msgs, nil
}

func (s *FileStore) Save(_ context.Context, msgs []StoredMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msgs == nil {
		msgs = []StoredMessage{}
	}
	if err := writeJSONFile(s.path, msgs); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

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
