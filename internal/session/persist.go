package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// HistoryFile is the snapshot file name inside each session directory
const HistoryFile = "history.json"

// HistoryPath returns the snapshot path for a session
func HistoryPath(dir, id string) string {
	return filepath.Join(dir, id, HistoryFile)
}

// writeSnapshot replaces the session file atomically: temp file, fsync, rename.
// Readers see either the previous snapshot or the new one.
func writeSnapshot(dir string, snap *Snapshot) error {
	path := HistoryPath(dir, snap.SessionID)

	data, err := sonic.ConfigStd.MarshalIndent(snap, "", "    ")
	if err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: fmt.Errorf("failed to encode snapshot: %w", err)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), HistoryFile+".*.tmp")
	if err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Load reads a persisted session back from dir
func Load(dir, id string) (*Snapshot, error) {
	path := HistoryPath(dir, id)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}

	var snap Snapshot
	if err := sonic.ConfigStd.Unmarshal(data, &snap); err != nil {
		return nil, &PersistenceError{Op: "read", Path: path, Err: fmt.Errorf("failed to decode snapshot: %w", err)}
	}
	if snap.History == nil {
		snap.History = []Turn{}
	}
	return &snap, nil
}
