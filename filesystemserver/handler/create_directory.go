package handler

import (
	"os"

	"go.uber.org/zap"

	"github.com/gstbrowser/connector/internal/logging"
)

// MkDir creates the directory name inside path and returns the refreshed
// listing together with the folder tree.
func (c *Connector) MkDir(path, name string) Result {
	dir, ok := c.resolve(path)
	if !ok || !isDir(dir) {
		return Failure(ErrDirectoryNotFound)
	}

	if name == "" || !ValidName(name) {
		return Failure(ErrInvalidParameter)
	}

	target, ok := c.resolveIn(dir, name)
	if !ok {
		return Failure(ErrInvalidParameter)
	}
	if isDir(target) {
		return Failure(ErrMkdirExists)
	}

	if err := os.Mkdir(target, c.cfg.DirMode); err != nil {
		logging.Warn("mkdir failed", zap.String("path", target), zap.Error(err))
		return Failure(ErrMkdir)
	}
	// Mkdir is subject to the umask; the configured mode is applied as is.
	if err := os.Chmod(target, c.cfg.DirMode); err != nil {
		logging.Debug("chmod after mkdir failed", zap.String("path", target), zap.Error(err))
	}

	cache := c.openCache(dir)
	cache.UpdateItem(name)

	return success(cache.Files(), c.tree())
}
