package activity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
)

// Snapshot is the last successful fetch.
type Snapshot struct {
	FetchedAt time.Time
	Rows      []types.ActivityEvent
}

// Mirror persists the last good snapshot so restarts and upstream outages
// still have data.
type Mirror interface {
	Load() (*Snapshot, error)
	Save(Snapshot) error
}

type mirrorFile struct {
	FetchedAtMs int64           `json:"fetchedAtMs"`
	Rows        json.RawMessage `json:"rows"`
}

// FileMirror stores the snapshot as one JSON document, replaced atomically.
type FileMirror struct {
	path string
}

func NewFileMirror(path string) *FileMirror {
	return &FileMirror{path: path}
}

func (m *FileMirror) Path() string {
	return m.path
}

// Load returns (nil, nil) when no usable mirror exists: a missing file, a zero
// fetch time or a rows field that is not a JSON array. Unreadable or corrupt
// files return an error and must also be treated as absent.
func (m *FileMirror) Load() (*Snapshot, error) {
	raw, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read activity mirror: %w", err)
	}

	var file mirrorFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode activity mirror: %w", err)
	}
	rowsRaw := bytes.TrimSpace(file.Rows)
	if file.FetchedAtMs == 0 || len(rowsRaw) == 0 || rowsRaw[0] != '[' {
		return nil, nil
	}

	rows := []types.ActivityEvent{}
	if err := json.Unmarshal(rowsRaw, &rows); err != nil {
		return nil, fmt.Errorf("decode activity mirror rows: %w", err)
	}
	return &Snapshot{FetchedAt: time.UnixMilli(file.FetchedAtMs).UTC(), Rows: rows}, nil
}

// Save writes to a temp file in the same directory and renames it over the
// mirror, so readers never observe a partial document.
func (m *FileMirror) Save(snap Snapshot) error {
	rows := snap.Rows
	if rows == nil {
		rows = []types.ActivityEvent{}
	}
	encodedRows, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode activity rows: %w", err)
	}
	payload, err := json.MarshalIndent(mirrorFile{FetchedAtMs: snap.FetchedAt.UnixMilli(), Rows: encodedRows}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode activity mirror: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".live_activity_*.tmp")
	if err != nil {
		return fmt.Errorf("create mirror temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write mirror temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close mirror temp file: %w", err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		return fmt.Errorf("replace activity mirror: %w", err)
	}
	return nil
}
