package data

import (
	"sync"
	"time"

	"github.com/ducminhle1904/directional-signals/pkg/types"
)

type cachedFile struct {
	modTime  time.Time
	snapshot *types.Snapshot
}

// FileCache keeps the last parsed snapshot of each candle file together
// with the modification time it was read at. Snapshots are immutable and
// shared between callers.
type FileCache struct {
	mu    sync.RWMutex
	files map[string]cachedFile
}

// NewFileCache creates an empty file cache
func NewFileCache() *FileCache {
	return &FileCache{files: make(map[string]cachedFile)}
}

// Get returns the snapshot of path if it was cached at modTime
func (c *FileCache) Get(path string, modTime time.Time) (*types.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.files[path]
	if !ok || !entry.modTime.Equal(modTime) {
		return nil, false
	}
	return entry.snapshot, true
}

// Set records the snapshot of path read at modTime, replacing any older entry
func (c *FileCache) Set(path string, modTime time.Time, snapshot *types.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files[path] = cachedFile{modTime: modTime, snapshot: snapshot}
}

// Clear forgets every file
func (c *FileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.files = make(map[string]cachedFile)
}

// Size returns the number of cached files
func (c *FileCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.files)
}
