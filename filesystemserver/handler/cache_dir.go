package handler

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/djherbis/times"
	"go.uber.org/zap"

	"github.com/gstbrowser/connector/internal/logging"
	"github.com/gstbrowser/connector/internal/metrics"
)

const (
	// CacheFileName is the sidecar holding a directory's cached listing.
	CacheFileName = ".htdircache"

	// CacheTTL is how long a sidecar is trusted, measured from its own
	// modification time.
	CacheTTL = 7200 * time.Second
)

// CacheDir is the cached listing of one directory, persisted in a sidecar
// inside that directory. Every mutation rewrites the whole sidecar; there
// is no locking, so concurrent writers race and the last one wins.
type CacheDir struct {
	dir       string
	cachefile string
	cfg       Config
	hidden    hiddenSet
	items     map[string]FileDescriptor
}

// OpenCacheDir loads the cache of dir, rebuilding it when the sidecar is
// missing, older than CacheTTL or malformed.
func OpenCacheDir(dir string, cfg Config) *CacheDir {
	return openCacheDir(dir, cfg, compileHidden(cfg.Hidden))
}

func openCacheDir(dir string, cfg Config, hidden hiddenSet) *CacheDir {
	c := newCacheDir(dir, cfg, hidden)

	items, reason := c.load()
	if reason != "" {
		logging.Debug("rebuilding directory cache", zap.String("dir", c.dir), zap.String("reason", reason))
		metrics.CacheRefresh(reason)
		c.Refresh()
		return c
	}
	c.items = items
	return c
}

func newCacheDir(dir string, cfg Config, hidden hiddenSet) *CacheDir {
	dir = filepath.Clean(dir)
	return &CacheDir{
		dir:       dir,
		cachefile: filepath.Join(dir, CacheFileName),
		cfg:       cfg,
		hidden:    hidden,
		items:     make(map[string]FileDescriptor),
	}
}

// load reads the sidecar. A non-empty reason means it cannot be used.
func (c *CacheDir) load() (map[string]FileDescriptor, string) {
	ts, err := times.Stat(c.cachefile)
	if err != nil {
		return nil, "missing"
	}
	if time.Since(ts.ModTime()) >= CacheTTL {
		return nil, "expired"
	}

	data, err := os.ReadFile(c.cachefile)
	if err != nil {
		return nil, "unreadable"
	}

	var items map[string]FileDescriptor
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return nil, "corrupt"
	}
	for name, desc := range items {
		if desc.Name != name {
			return nil, "corrupt"
		}
	}
	return items, ""
}

// Files returns the cached descriptors ordered by name.
func (c *CacheDir) Files() []FileDescriptor {
	names := make([]string, 0, len(c.items))
	for name := range c.items {
		if c.hidden.match(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	files := make([]FileDescriptor, 0, len(names))
	for _, name := range names {
		files = append(files, c.items[name])
	}
	return files
}

// Refresh rescans every direct child of the directory and replaces the
// whole cache.
func (c *CacheDir) Refresh() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		logging.Warn("directory scan failed", zap.String("dir", c.dir), zap.Error(err))
	}

	items := make(map[string]FileDescriptor, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if c.hidden.match(name) {
			continue
		}
		items[name] = Describe(filepath.Join(c.dir, name), c.cfg)
	}

	c.items = items
	c.save()
}

// UpdateItem recomputes the descriptor of one entry and stores it.
// Siblings are not rescanned.
func (c *CacheDir) UpdateItem(name string) {
	key := filepath.Base(filepath.Clean(name))
	c.items[key] = Describe(filepath.Join(c.dir, name), c.cfg)
	c.save()
}

// DeleteItem drops one entry from the cache.
func (c *CacheDir) DeleteItem(name string) {
	delete(c.items, filepath.Base(filepath.Clean(name)))
	c.save()
}

// save persists the whole mapping. A failed write only costs a rescan on
// the next access, so it is logged and otherwise ignored.
func (c *CacheDir) save() {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c.items); err != nil {
		logging.Warn("encoding directory cache failed", zap.String("dir", c.dir), zap.Error(err))
		return
	}

	if err := os.WriteFile(c.cachefile, buf.Bytes(), c.cfg.FileMode); err != nil {
		logging.Warn("writing directory cache failed", zap.String("file", c.cachefile), zap.Error(err))
	}
}
