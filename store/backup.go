package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const datedBackupLayout = "2006-01-02"

// FileBackup reads and writes named JSON files in the user-configurable
// backup directory.
type FileBackup struct {
	Dir string
}

// ensureDir creates the backup directory. Creation is idempotent.
func (b FileBackup) ensureDir() error {
	err := os.MkdirAll(b.Dir, 0o755)
	if err != nil && !os.IsExist(err) {
		return fmt.Errorf("creating backup directory: %w", err)
	}

	return nil
}

// Write stores data under the given file name and returns the full path.
func (b FileBackup) Write(name string, data []byte) (string, error) {
	err := b.ensureDir()
	if err != nil {
		return "", err
	}

	path := filepath.Join(b.Dir, name)

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return "", fmt.Errorf("writing backup file %s: %w", name, err)
	}

	return path, nil
}

// WriteDated stores a date-stamped snapshot, overwriting any snapshot
// already taken the same day.
func (b FileBackup) WriteDated(data []byte, now time.Time) (string, error) {
	name := fmt.Sprintf(
		"pontaj-backup-%s.json",
		now.Format(datedBackupLayout),
	)

	return b.Write(name, data)
}

// Read returns the contents of a backup file.
func (b FileBackup) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading backup file %s: %w", name, err)
	}

	return data, nil
}
