package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PublicPrefix is the URL path under which every bucket's objects are
// served. Public URLs embed it so a stored URL can be mapped back to its
// storage key with a plain substring search.
const PublicPrefix = "/storage/v1/object/public/"

// Bucket is a single named object-storage bucket backed by a local
// directory and served as static files.
type Bucket struct {
	name string
	root string
	base string
}

// Open prepares the bucket's backing directory and returns the bucket.
func Open(name, root, baseURL string) (*Bucket, error) {
	if name == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create bucket directory: %w", err)
	}
	return &Bucket{
		name: name,
		root: root,
		base: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (b *Bucket) Name() string { return b.name }

// Root returns the backing directory, for mounting as static files.
func (b *Bucket) Root() string { return b.root }

// PublicPath returns the URL path the bucket is served under.
func (b *Bucket) PublicPath() string {
	return PublicPrefix + b.name
}

// PublicURL returns the full public URL for a key.
func (b *Bucket) PublicURL(key string) string {
	return b.base + b.PublicPath() + "/" + key
}

// KeyFromURL recovers the storage key from a public URL. Returns ""
// when the URL does not point into this bucket.
func (b *Bucket) KeyFromURL(url string) string {
	marker := b.PublicPath() + "/"
	i := strings.Index(url, marker)
	if i == -1 {
		return ""
	}
	return url[i+len(marker):]
}

// Upload writes an object and returns its public URL.
func (b *Bucket) Upload(key string, data []byte) (string, error) {
	p, err := b.objectPath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	return b.PublicURL(key), nil
}

// Remove deletes objects. Missing objects are not an error, so removal
// is idempotent. Returns the first real failure, after attempting every
// key.
func (b *Bucket) Remove(keys ...string) error {
	var firstErr error
	for _, key := range keys {
		p, err := b.objectPath(key)
		if err == nil {
			err = os.Remove(p)
		}
		if err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("failed to remove object %q: %w", key, err)
		}
	}
	return firstErr
}

// Exists reports whether an object is present.
func (b *Bucket) Exists(key string) bool {
	p, err := b.objectPath(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

func (b *Bucket) objectPath(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(b.root, filepath.FromSlash(clean)), nil
}
