package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fleet-backend/internal/store"
	"fleet-backend/internal/timeutil"
)

// LoadFile restores the DB from a JSON snapshot. A missing file is not an error.
func (db *DB) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	db.Load(&snap)
	return nil
}

// SaveFile writes a JSON snapshot atomically (temp file + rename)
func (db *DB) SaveFile(ctx context.Context, path string) error {
	snap, err := store.Take(ctx, db.Store(), timeutil.Now())
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
