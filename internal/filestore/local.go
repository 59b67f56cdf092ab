// Package filestore keeps uploaded files on local disk.
package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores files under Root, one directory per user.
type Local struct {
	Root string
}

// Save writes data to <Root>/<userID>/<uuid>-<filename> and returns the
// path. Every call gets a new file, so uploads sharing a name never
// overwrite each other. Both path components are sanitized so a caller
// cannot escape Root.
func (l Local) Save(userID, filename string, data []byte) (string, error) {
	dir := filepath.Join(l.Root, SanitizeFilename(userID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+"-"+SanitizeFilename(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// Remove deletes a file written by Save. A missing file is not an error.
func (l Local) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// SanitizeFilename reduces name to a single safe path element.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
