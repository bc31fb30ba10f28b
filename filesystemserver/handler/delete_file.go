package handler

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/gstbrowser/connector/internal/logging"
)

// Delete removes the file or empty directory name inside path. A
// directory's sidecar is removed first; a directory holding anything else
// is left untouched and reported as not empty.
func (c *Connector) Delete(path, name string) Result {
	if !entryName(name) {
		return Failure(ErrInvalidParameter)
	}

	dir, ok := c.resolve(path)
	if !ok {
		return Failure(ErrInvalidParameter)
	}
	target, ok := c.resolveIn(dir, name)
	if !ok || target == c.cfg.BaseDir {
		return Failure(ErrInvalidParameter)
	}

	switch {
	case isDir(target):
		if code := c.removeDir(target); code != 0 {
			return Failure(code)
		}
		cache := c.openCache(dir)
		cache.DeleteItem(name)
		return success(cache.Files(), c.tree())

	case isFile(target):
		if err := os.Remove(target); err != nil {
			logging.Warn("delete failed", zap.String("path", target), zap.Error(err))
			return Failure(ErrDelete)
		}
		cache := c.openCache(dir)
		cache.DeleteItem(name)
		return success(cache.Files(), nil)

	default:
		return Failure(ErrFileNotFound)
	}
}

// removeDir deletes an empty directory and its sidecar, returning an
// error code or 0.
func (c *Connector) removeDir(target string) int {
	entries, err := os.ReadDir(target)
	if err != nil {
		logging.Warn("reading directory before delete failed", zap.String("path", target), zap.Error(err))
		return ErrDelete
	}
	for _, entry := range entries {
		if entry.Name() != CacheFileName {
			return ErrDeleteNotEmptyDir
		}
	}

	sidecar := filepath.Join(target, CacheFileName)
	if err := os.Remove(sidecar); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("removing directory cache failed", zap.String("path", sidecar), zap.Error(err))
		return ErrDelete
	}

	if err := os.Remove(target); err != nil {
		if errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EEXIST) {
			return ErrDeleteNotEmptyDir
		}
		logging.Warn("rmdir failed", zap.String("path", target), zap.Error(err))
		return ErrDelete
	}
	return 0
}
