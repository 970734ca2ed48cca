package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StateStore persists how many input lines have been committed.
type StateStore interface {
	Load(ctx context.Context) (uint64, bool, error)
	Save(ctx context.Context, line uint64) error
}

// FileStateStore stores state in a local JSON file.
type FileStateStore struct {
	Path string
}

type stateRecord struct {
	LastLine  uint64 `json:"last_line"`
	UpdatedAt string `json:"updated_at"`
}

func (s *FileStateStore) Load(_ context.Context) (uint64, bool, error) {
	if s == nil || s.Path == "" {
		return 0, false, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read state: %w", err)
	}

	var rec stateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, false, fmt.Errorf("parse state: %w", err)
	}
	return rec.LastLine, true, nil
}

func (s *FileStateStore) Save(_ context.Context, line uint64) error {
	if s == nil || s.Path == "" {
		return nil
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	data, err := json.Marshal(stateRecord{
		LastLine:  line,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}

// StateBackend is implemented by ledger stores that keep named progress rows.
type StateBackend interface {
	LoadState(ctx context.Context, name string) (uint64, bool, error)
	SaveState(ctx context.Context, name string, value uint64) error
}

// DBStateStore stores state in the ledger's indexer_state table.
type DBStateStore struct {
	Backend StateBackend
	Name    string
}

func (s *DBStateStore) Load(ctx context.Context) (uint64, bool, error) {
	if s == nil || s.Backend == nil {
		return 0, false, nil
	}
	return s.Backend.LoadState(ctx, s.Name)
}

func (s *DBStateStore) Save(ctx context.Context, line uint64) error {
	if s == nil || s.Backend == nil {
		return nil
	}
	return s.Backend.SaveState(ctx, s.Name, line)
}
