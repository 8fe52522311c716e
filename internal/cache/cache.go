package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/arcanaland/proxymancer/internal/logging"
)

const (
	entrySuffix = ".img"
	lockName    = ".lock"
	tmpPrefix   = ".tmp-"
)

// Entry describes a cached image file.
type Entry struct {
	File    string
	Size    int64
	ModTime time.Time
}

// Cache is a directory of image files keyed by card name.
type Cache struct {
	dir    string
	logger *slog.Logger
	lock   *flock.Flock
}

// New opens the cache rooted at dir, creating the directory if needed.
func New(dir string, logger *slog.Logger) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	return &Cache{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "cache"),
		lock:   flock.New(filepath.Join(dir, lockName)),
	}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the file that holds (or would hold) the image for key.
func (c *Cache) Path(key string) string {
	return filepath.Join(c.dir, fileName(key))
}

// Get returns the cached image for key. A missing entry is reported as
// ok=false with a nil error.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, nil
	}

	path := c.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("cache miss", slog.String("key", key))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	if len(data) == 0 {
		return nil, false, nil
	}

	c.logger.Debug("cache hit", slog.String("key", key), slog.String("path", path))
	return data, true, nil
}

// Put stores data under key, replacing any previous entry. The write goes
// through a temp file so readers never observe a partial image.
func (c *Cache) Put(key string, data []byte) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if len(data) == 0 {
		return errors.New("refusing to cache empty image")
	}

	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("lock cache: %w", err)
	}
	defer c.lock.Unlock()

	tmpPath := filepath.Join(c.dir, tmpPrefix+uuid.NewString())
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	path := c.Path(key)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	c.logger.Debug("cached image",
		slog.String("key", key),
		slog.String("path", path),
		slog.Int("bytes", len(data)))
	return nil
}

// List returns all cached images sorted by file name.
func (c *Cache) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("read cache directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), entrySuffix) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{File: de.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].File < entries[j].File
	})
	return entries, nil
}

// Clear removes every cached image and returns how many were deleted.
func (c *Cache) Clear() (int, error) {
	if err := c.lock.Lock(); err != nil {
		return 0, fmt.Errorf("lock cache: %w", err)
	}
	defer c.lock.Unlock()

	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("read cache directory: %w", err)
	}

	removed := 0
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !(strings.HasSuffix(name, entrySuffix) || strings.HasPrefix(name, tmpPrefix)) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil {
			return removed, fmt.Errorf("remove %s: %w", name, err)
		}
		if strings.HasSuffix(name, entrySuffix) {
			removed++
		}
	}

	c.logger.Debug("cleared cache", slog.Int("removed", removed))
	return removed, nil
}
