// Package storage provides on-disk blob storage for uploaded images,
// currently profile avatars.
package storage

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Blobs manages image files under a single directory.
// Thread-safe for concurrent operations.
type Blobs struct {
	basePath string
	urlBase  string
	mu       sync.RWMutex // Protects file operations
}

// NewAvatars creates blob storage for profile avatars.
// basePath is the data directory; files land in {basePath}/avatars/
// and are served under /api/v1/files/avatars/.
func NewAvatars(basePath string) (*Blobs, error) {
	return newBlobs(basePath, "avatars", "/api/v1/files/avatars")
}

func newBlobs(basePath, subdir, urlBase string) (*Blobs, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	dir := filepath.Join(basePath, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create %s directory: %w", subdir, err)
	}

	return &Blobs{basePath: dir, urlBase: urlBase}, nil
}

// Save stores image data under an owner's ID, overwriting any previous
// blob. Returns the public URL path of the stored blob.
func (b *Blobs) Save(id string, data []byte) (string, error) {
	if id == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.WriteFile(b.Path(id), data, 0644); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}
	return b.URL(id), nil
}

// Get retrieves image data by owner ID.
func (b *Blobs) Get(id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("ID cannot be empty")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	data, err := os.ReadFile(b.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image not found for %s: %w", id, err)
		}
		return nil, fmt.Errorf("read image file: %w", err)
	}
	return data, nil
}

// Exists checks whether a blob is stored for an owner.
func (b *Blobs) Exists(id string) bool {
	if id == "" {
		return false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	_, err := os.Stat(b.Path(id))
	return err == nil
}

// Delete removes an owner's blob. Deleting a missing blob is not an
// error.
func (b *Blobs) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.Path(id)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete image file: %w", err)
	}
	return nil
}

// Hash computes the SHA-256 of a stored blob, hex-encoded for
// ETag/cache validation.
func (b *Blobs) Hash(id string) (string, error) {
	data, err := b.Get(id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// Path returns the filesystem path for an owner's blob.
func (b *Blobs) Path(id string) string {
	return filepath.Join(b.basePath, fmt.Sprintf("%s.jpg", id))
}

// URL returns the public URL path for an owner's blob.
func (b *Blobs) URL(id string) string {
	return b.urlBase + "/" + id + ".jpg"
}
