package utils

import "sync"

var gdalMu sync.Mutex

// WithGDALLock serializes access to godal. GDAL dataset handles are not safe
// for concurrent use, and concurrent rolls open clips from multiple workers.
func WithGDALLock(fn func()) {
	gdalMu.Lock()
	defer gdalMu.Unlock()
	fn()
}
