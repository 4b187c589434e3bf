// Package storage keeps uploaded resume files on local disk.
//
// Keys look like "resumes/<userID>/<unix-millis>-<name>" and are served back
// under URLPrefix. The first path segment after "resumes" is the owner, which
// is how the file handler enforces ownership.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// URLPrefix is where stored files are served from.
const URLPrefix = "/api/v1/files/"

// ErrNotFound is returned by Open for unknown keys.
var ErrNotFound = errors.New("file not found")

// ErrInvalidKey is returned for keys that escape the storage root.
var ErrInvalidKey = errors.New("invalid file key")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store writes files under a root directory.
type Store struct {
	root string
	now  func() time.Time
}

// New creates a Store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &Store{root: dir, now: time.Now}, nil
}

// Save writes data for userID and returns its public URL.
func (s *Store) Save(ctx context.Context, userID, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if userID == "" || strings.ContainsAny(userID, `/\.`) {
		return "", ErrInvalidKey
	}

	key := path.Join("resumes", userID, fmt.Sprintf("%d-%s", s.now().UnixMilli(), SanitizeName(filename)))
	full := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create user dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return URLPrefix + key, nil
}

// Open returns a reader for key. The caller closes it.
func (s *Store) Open(key string) (io.ReadSeekCloser, os.FileInfo, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, ErrNotFound
	}
	return f, info, nil
}

// Owner returns the user ID encoded in key, or "" if key is malformed.
func Owner(key string) string {
	clean, err := cleanKey(key)
	if err != nil {
		return ""
	}
	parts := strings.Split(clean, "/")
	if len(parts) != 3 || parts[0] != "resumes" {
		return ""
	}
	return parts[1]
}

// KeyFromURL strips URLPrefix from a stored file URL.
func KeyFromURL(url string) string {
	return strings.TrimPrefix(url, URLPrefix)
}

// SanitizeName keeps a safe base name for storage on disk.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "resume.pdf"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}

func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean != key || strings.HasPrefix(clean, "..") {
		return "", ErrInvalidKey
	}
	return clean, nil
}
