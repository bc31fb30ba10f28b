package handler

import (
	"os"

	"go.uber.org/zap"

	"github.com/gstbrowser/connector/internal/logging"
)

// Rename renames the file or directory oldName inside path to newName. Renaming a
// directory also returns the folder tree.
func (c *Connector) Rename(path, oldName, newName string) Result {
	if !entryName(oldName) || newName == "" || !ValidName(newName) {
		return Failure(ErrInvalidParameter)
	}

	dir, ok := c.resolve(path)
	if !ok {
		return Failure(ErrInvalidParameter)
	}
	src, ok := c.resolveIn(dir, oldName)
	if !ok {
		return Failure(ErrInvalidParameter)
	}
	dst, ok := c.resolveIn(dir, newName)
	if !ok {
		return Failure(ErrInvalidParameter)
	}

	srcIsDir := isDir(src)
	if !srcIsDir && !isFile(src) {
		return Failure(ErrFileNotFound)
	}

	if err := os.Rename(src, dst); err != nil {
		logging.Warn("rename failed", zap.String("from", src), zap.String("to", dst), zap.Error(err))
		return Failure(ErrRename)
	}

	cache := c.openCache(dir)
	cache.DeleteItem(oldName)
	cache.UpdateItem(newName)

	if srcIsDir {
		return success(cache.Files(), c.tree())
	}
	return success(cache.Files(), nil)
}
