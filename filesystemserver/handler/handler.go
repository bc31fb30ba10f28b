package handler

import (
	"os"
	"path/filepath"
	"strings"
)

// Connector performs the file manager operations below one base
// directory. Every mutation touches the filesystem first and then updates
// only the affected directory caches.
type Connector struct {
	cfg    Config
	hidden hiddenSet
}

func NewConnector(cfg Config) *Connector {
	cfg.BaseDir = filepath.Clean(cfg.BaseDir)
	return &Connector{
		cfg:    cfg,
		hidden: compileHidden(cfg.Hidden),
	}
}

// Config returns the configuration the connector was built with.
func (c *Connector) Config() Config {
	return c.cfg
}

// resolve maps a base-relative path to an absolute one. With Confine set,
// paths that escape the base directory are rejected.
func (c *Connector) resolve(rel string) (string, bool) {
	full := filepath.Join(c.cfg.BaseDir, filepath.FromSlash(rel))
	if !c.cfg.Confine {
		return full, true
	}
	return full, within(c.cfg.BaseDir, full)
}

// resolveIn joins an entry name onto an already resolved directory.
func (c *Connector) resolveIn(dir, name string) (string, bool) {
	full := filepath.Join(dir, filepath.FromSlash(name))
	if !c.cfg.Confine {
		return full, true
	}
	return full, within(c.cfg.BaseDir, full)
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (c *Connector) openCache(dir string) *CacheDir {
	return openCacheDir(dir, c.cfg, c.hidden)
}

func (c *Connector) listing(dir string) []FileDescriptor {
	return c.openCache(dir).Files()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
