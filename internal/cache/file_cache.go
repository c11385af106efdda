package cache

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/landwatch/landwatch-analysis-api/internal/properties"
)

// Entry wraps cached data with a checksum so a torn or hand-edited file
// reads as a miss instead of bad data.
type Entry[T any] struct {
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
}

// FileCache stores JSON-serializable values under ROOT_PATH/data/cache.
// Analysis results for a (region, date range, kind) triple are deterministic
// given the same imagery, which makes them safe to cache indefinitely;
// MaxAge exists for callers that want fresher imagery to win eventually.
type FileCache[T any] struct {
	dir    string
	MaxAge time.Duration
}

func NewFileCache[T any](subDir string) *FileCache[T] {
	return &FileCache[T]{
		dir: filepath.Join(properties.RootPath(), "data", "cache", subDir),
	}
}

// Key derives a stable cache key from the request parameters.
func (fc *FileCache[T]) Key(params ...any) string {
	var keyData string
	for _, param := range params {
		keyData += fmt.Sprintf("%v_", param)
	}
	sum := sha1.Sum([]byte(keyData))
	return hex.EncodeToString(sum[:])
}

func (fc *FileCache[T]) Get(key string) (T, bool) {
	var zero T
	data, err := os.ReadFile(filepath.Join(fc.dir, key+".json"))
	if err != nil {
		return zero, false
	}
	var entry Entry[T]
	if err := json.Unmarshal(data, &entry); err != nil {
		return zero, false
	}
	if entry.Checksum != checksum(entry.Data) {
		return zero, false
	}
	if fc.MaxAge > 0 && time.Since(entry.CreatedAt) > fc.MaxAge {
		return zero, false
	}
	return entry.Data, true
}

func (fc *FileCache[T]) Set(key string, data T) error {
	if err := os.MkdirAll(fc.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	entry := Entry[T]{
		Data:      data,
		CreatedAt: time.Now().UTC(),
		Checksum:  checksum(data),
	}
	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	// Write-then-rename keeps readers from seeing half a file.
	cacheFile := filepath.Join(fc.dir, key+".json")
	tmpFile := cacheFile + ".tmp"
	if err := os.WriteFile(tmpFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := os.Rename(tmpFile, cacheFile); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp cache file: %w", err)
	}
	return nil
}

func checksum[T any](data T) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return hex.EncodeToString(hash[:])
}
