package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bryanwahyu/cyber-assistant/internal/domain/history"
)

// Store persists history as one JSON array on disk (scan_history.json by default).
// Every append rewrites the file through a temp file + rename so a reader never sees half a record.
// An undecodable file is moved aside to <path>.corrupt-<timestamp> and history restarts empty.
type Store struct {
	mu     sync.Mutex
	path   string
	Logger *slog.Logger
}

var _ history.Store = (*Store)(nil)

func New(path string) *Store {
	if path == "" {
		path = "scan_history.json"
	}
	return &Store{path: path, Logger: slog.Default()}
}

func (s *Store) Append(ctx context.Context, r *history.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	records = append(records, r)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *Store) List(ctx context.Context) ([]*history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]*history.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*history.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var records []*history.Record
	if len(data) == 0 {
		return []*history.Record{}, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return s.quarantine(err)
	}
	return records, nil
}

// quarantine keeps the unreadable file for inspection so later appends start clean.
func (s *Store) quarantine(cause error) ([]*history.Record, error) {
	aside := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().UTC().Format("20060102T150405.000000000Z"))
	if err := os.Rename(s.path, aside); err != nil {
		return nil, fmt.Errorf("decode history: %w (move aside: %v)", cause, err)
	}
	s.Logger.Warn("history file unreadable, moved aside",
		slog.String("path", s.path),
		slog.String("moved_to", aside),
		slog.String("error", cause.Error()),
	)
	return []*history.Record{}, nil
}
