package dedup

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

// FileStore is the default backend: a plain append-only text file with one
// URL per line. Single-process use only; concurrent runs against the same
// file are unsupported.
type FileStore struct {
	mu       sync.RWMutex
	urls     map[string]struct{}
	filename string
}

func NewFileStore(filename string) *FileStore {
	return &FileStore{
		urls:     make(map[string]struct{}),
		filename: filename,
	}
}

func (s *FileStore) Load(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open dedup file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			s.urls[line] = struct{}{}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read dedup file: %w", err)
	}

	return nil
}

func (s *FileStore) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.urls[url]
	return exists
}

func (s *FileStore) Record(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open dedup file for append: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(url + "\n"); err != nil {
		return fmt.Errorf("failed to append to dedup file: %w", err)
	}

	s.urls[url] = struct{}{}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
