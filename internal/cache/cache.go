package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/restylelab/stylebench/internal/models"
	"github.com/restylelab/stylebench/internal/rubric"
)

// Cache stores graded evaluation records on disk so that re-running a
// benchmark over unchanged images does not re-call the judge.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a cache rooted at dir. An empty dir disables the cache:
// Get always misses and Put is a no-op.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key generates a cache key for one pair evaluation.
// The key covers:
// - the judge identity (name includes the model)
// - the rubric (style name plus every assertion id and text)
// - the content of both image files
// Any change to the judge, the rubric, or the images invalidates the entry.
func Key(judgeName string, r *rubric.Rubric, pair models.CapturedPair) (string, error) {
	h := sha256.New()

	if err := writeString(h, judgeName); err != nil {
		return "", err
	}
	if err := writeString(h, r.Name); err != nil {
		return "", err
	}
	for _, a := range r.Assertions {
		if err := writeString(h, a.ID); err != nil {
			return "", err
		}
		if err := writeString(h, string(a.Dimension)); err != nil {
			return "", err
		}
		if err := writeString(h, a.Text); err != nil {
			return "", err
		}
	}

	if err := hashImage(h, pair.OriginalImage); err != nil {
		return "", fmt.Errorf("hashing original image: %w", err)
	}
	if err := hashImage(h, pair.StyledImage); err != nil {
		return "", fmt.Errorf("hashing styled image: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached evaluation record if it exists.
func (c *Cache) Get(key string) (*models.EvaluationRecord, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		// Cache miss
		return nil, false
	}

	var rec models.EvaluationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return &rec, true
}

// Put stores an evaluation record in the cache.
func (c *Cache) Put(key string, rec *models.EvaluationRecord) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling evaluation: %w", err)
	}

	if err := os.WriteFile(c.cachePath(key), data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached evaluations. It refuses to delete a directory
// that contains anything other than .json cache files.
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if filepath.Ext(entry.Name()) != ".json" {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func writeString(w io.Writer, s string) error {
	// Null byte delimiter prevents hash collisions between adjacent fields
	_, err := w.Write([]byte(s + "\x00"))
	return err
}

func hashImage(h io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		// A missing file still contributes its path, so the entry is
		// invalidated when the file appears.
		if os.IsNotExist(err) {
			return writeString(h, path)
		}
		return err
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	return nil
}
