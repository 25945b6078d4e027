package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileExtension is appended to the container name to form the dump file name
const FileExtension = ".sql"

// BackupFile represents a stored backup file
type BackupFile struct {
	Key          string
	Path         string
	Size         int64
	LastModified time.Time
}

// Local keeps one dump per container in a directory on the local filesystem.
// Each run overwrites the previous dump.
type Local struct {
	basePath string
}

// NewLocal creates the backup directory if needed
func NewLocal(path string) (*Local, error) {
	if path == "" {
		return nil, fmt.Errorf("local storage requires a path")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Local{basePath: path}, nil
}

// Open returns the backup directory without creating it, for read-only use.
// Stat reports no dump when the directory does not exist.
func Open(path string) (*Local, error) {
	if path == "" {
		return nil, fmt.Errorf("local storage requires a path")
	}
	return &Local{basePath: path}, nil
}

// BasePath returns the backup directory
func (l *Local) BasePath() string {
	return l.basePath
}

// Path returns the dump file path for a container
func (l *Local) Path(key string) string {
	return filepath.Join(l.basePath, key+FileExtension)
}

// Create opens the dump file for a container for writing, truncating any
// previous contents.
func (l *Local) Create(key string) (*os.File, error) {
	file, err := os.OpenFile(l.Path(key), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}

// Remove deletes the dump file for a container. A missing file is not an error.
func (l *Local) Remove(key string) error {
	if err := os.Remove(l.Path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Stat returns the dump file for a container, or nil if there is none yet
func (l *Local) Stat(key string) (*BackupFile, error) {
	path := l.Path(key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &BackupFile{
		Key:          key,
		Path:         path,
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, nil
}
