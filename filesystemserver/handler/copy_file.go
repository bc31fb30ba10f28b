package handler

import (
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	"go.uber.org/zap"

	"github.com/gstbrowser/connector/internal/logging"
)

// Copy copies the file name inside path to target. target is either an
// existing directory, which receives the file under its own name, or the
// full destination path of the copy.
func (c *Connector) Copy(path, name, target string) Result {
	src, code := c.sourceFile(path, name)
	if code != 0 {
		return Failure(code)
	}

	destDir, destName, code := c.destination(src, name, target)
	if code != 0 {
		return Failure(code)
	}

	dest := filepath.Join(destDir, destName)
	if err := c.copyFile(src, dest); err != nil {
		logging.Warn("copy failed", zap.String("from", src), zap.String("to", dest), zap.Error(err))
		return Failure(ErrCopy)
	}

	c.openCache(destDir).UpdateItem(destName)
	return success(nil, nil)
}

// sourceFile resolves the file a copy or move starts from.
func (c *Connector) sourceFile(path, name string) (string, int) {
	dir, ok := c.resolve(path)
	if !ok {
		return "", ErrInvalidParameter
	}
	if !entryName(name) {
		return "", ErrInvalidParameter
	}
	src, ok := c.resolveIn(dir, name)
	if !ok {
		return "", ErrInvalidParameter
	}
	if isDir(src) {
		return "", ErrInvalidParameter
	}
	if !isFile(src) {
		return "", ErrFileNotFound
	}
	return src, 0
}

// destination resolves a copy or move target into the destination
// directory and basename. Checks run in a fixed order: existing
// directory, existing file, missing parent, invalid basename.
func (c *Connector) destination(src, name, target string) (string, string, int) {
	dest, ok := c.resolve(target)
	if !ok {
		return "", "", ErrInvalidParameter
	}

	if isDir(dest) {
		base := filepath.Base(filepath.Clean(name))
		if filepath.Join(dest, base) == src {
			return "", "", ErrCopyFileExists
		}
		return dest, base, 0
	}

	if isFile(dest) {
		return "", "", ErrCopyFileExists
	}
	if !isDir(filepath.Dir(dest)) {
		return "", "", ErrCopyDirNotFound
	}
	if !ValidName(filepath.Base(dest)) {
		return "", "", ErrInvalidParameter
	}
	return filepath.Dir(dest), filepath.Base(dest), 0
}

// copyFile copies content only; the copy gets the configured file mode.
func (c *Connector) copyFile(src, dst string) error {
	if err := copy.Copy(src, dst, copy.Options{PermissionControl: copy.DoNothing}); err != nil {
		return err
	}
	if err := os.Chmod(dst, c.cfg.FileMode); err != nil {
		logging.Debug("chmod after copy failed", zap.String("path", dst), zap.Error(err))
	}
	return nil
}
