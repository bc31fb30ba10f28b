package handler

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"

	"github.com/otiai10/copy"
	"go.uber.org/zap"

	"github.com/gstbrowser/connector/internal/logging"
)

// Move moves the file name inside path to target, resolved the same way
// as for Copy, and returns the listing of the source directory.
func (c *Connector) Move(path, name, target string) Result {
	src, code := c.sourceFile(path, name)
	if code != 0 {
		return Failure(code)
	}

	destDir, destName, code := c.destination(src, name, target)
	if code != 0 {
		return Failure(code)
	}

	dest := filepath.Join(destDir, destName)
	if err := moveFile(src, dest); err != nil {
		logging.Warn("move failed", zap.String("from", src), zap.String("to", dest), zap.Error(err))
		return Failure(ErrCopy)
	}

	c.openCache(destDir).UpdateItem(destName)

	cache := c.openCache(filepath.Dir(src))
	cache.DeleteItem(filepath.Base(src))

	return success(cache.Files(), nil)
}

// moveFile renames src to dst, falling back to copy and remove when they
// live on different filesystems.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := copy.Copy(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
