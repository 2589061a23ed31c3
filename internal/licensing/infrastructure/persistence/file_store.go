// Package persistence provides slot store implementations for the
// installation's key-value storage.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileSlotStore keeps every slot in one JSON object on disk.
type FileSlotStore struct {
	filePath string
	mu       sync.RWMutex
	rename   func(oldpath, newpath string) error
}

// NewFileSlotStore creates a file-backed slot store.
func NewFileSlotStore(filePath string) *FileSlotStore {
	return &FileSlotStore{filePath: filePath, rename: os.Rename}
}

// FilePath returns the path to the slot file.
func (s *FileSlotStore) FilePath() string {
	return s.filePath
}

// Get returns the value stored under key.
// A missing file is an empty store, not an error.
func (s *FileSlotStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, ok := slots[key]
	return value, ok, nil
}

// Set stores value under key.
func (s *FileSlotStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.load()
	if err != nil {
		return err
	}
	slots[key] = value
	return s.save(slots)
}

// Delete clears key.
func (s *FileSlotStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := slots[key]; !ok {
		return nil
	}
	delete(slots, key)
	return s.save(slots)
}

// Ping checks that the slot file's directory is reachable.
func (s *FileSlotStore) Ping(ctx context.Context) error {
	dir := filepath.Dir(s.filePath)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // created on first write
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func (s *FileSlotStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	slots := make(map[string]string)
	if len(data) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("corrupt slot file %s: %w", s.filePath, err)
	}
	return slots, nil
}

func (s *FileSlotStore) save(slots map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return err
	}

	// Write with restrictive permissions (user read/write only), then swap in.
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := s.rename(tmp, s.filePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace slot file: %w", err)
	}
	return nil
}
