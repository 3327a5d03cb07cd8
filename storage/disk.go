package storage

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore persists uploads as received_<name> inside a single directory.
// An existing file with the same name is overwritten.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating receive directory %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Create truncates or creates the file backing fileName.
func (d *DiskStore) Create(fileName string) (io.WriteCloser, string, error) {
	if err := ValidateFileName(fileName); err != nil {
		return nil, "", err
	}
	path := filepath.Join(d.dir, domain.ReceivedFilePrefix+fileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, "", err
	}
	return file, path, nil
}

func (d *DiskStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ValidateFileName rejects names that would escape the receive directory.
func ValidateFileName(fileName string) error {
	if fileName == "" || fileName == "." || fileName == ".." ||
		strings.ContainsAny(fileName, `/\`) || strings.ContainsRune(fileName, 0) {
		return fmt.Errorf("%q: %w", fileName, errors.ErrInvalidFileName)
	}
	return nil
}
