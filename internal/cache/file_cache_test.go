package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ROOT_PATH must be set before the first properties.Load, which the file
// cache triggers on construction.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "landwatch-cache-test")
	if err != nil {
		panic(err)
	}
	os.Setenv("ROOT_PATH", dir)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

type payload struct {
	Region string  `json:"region"`
	Mean   float64 `json:"mean"`
}

func TestFileCacheRoundTrip(t *testing.T) {
	fc := NewFileCache[payload]("roundtrip")
	key := fc.Key("camsur", "2023-01-01..2023-12-31", "ndvi")

	_, ok := fc.Get(key)
	assert.False(t, ok)

	want := payload{Region: "camsur", Mean: 0.42}
	require.NoError(t, fc.Set(key, want))

	got, ok := fc.Get(key)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFileCacheKeyStable(t *testing.T) {
	fc := NewFileCache[payload]("keys")
	assert.Equal(t, fc.Key("a", 1), fc.Key("a", 1))
	assert.NotEqual(t, fc.Key("a", 1), fc.Key("a", 2))
}

func TestFileCacheRejectsTamperedEntry(t *testing.T) {
	fc := NewFileCache[payload]("tampered")
	key := fc.Key("region")
	require.NoError(t, fc.Set(key, payload{Region: "x", Mean: 1}))

	path := filepath.Join(os.Getenv("ROOT_PATH"), "data", "cache", "tampered", key+".json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tampered := []byte(string(data))
	for i := range tampered {
		if tampered[i] == '1' {
			tampered[i] = '7'
			break
		}
	}
	require.NoError(t, os.WriteFile(path, tampered, 0644))

	_, ok := fc.Get(key)
	assert.False(t, ok, "checksum mismatch must read as a miss")
}

func TestFileCacheMaxAge(t *testing.T) {
	fc := NewFileCache[payload]("expiry")
	fc.MaxAge = time.Nanosecond
	key := fc.Key("old")
	require.NoError(t, fc.Set(key, payload{Region: "x"}))
	time.Sleep(time.Millisecond)

	_, ok := fc.Get(key)
	assert.False(t, ok)
}
