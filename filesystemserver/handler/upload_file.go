package handler

import (
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/gstbrowser/connector/internal/logging"
	"github.com/gstbrowser/connector/internal/metrics"
)

// Upload stores body inside path under the sanitized form of name. The
// directory cache is rebuilt afterwards rather than patched.
func (c *Connector) Upload(path, name string, body io.Reader) Result {
	dir, ok := c.resolve(path)
	if !ok || !isDir(dir) {
		return Failure(ErrDirectoryNotFound)
	}

	filename := SanitizeName(name)
	if filename == "" || filename == "." || filename == ".." || filename == CacheFileName {
		return Failure(ErrInvalidParameter)
	}

	target, ok := c.resolveIn(dir, filename)
	if !ok {
		return Failure(ErrInvalidParameter)
	}
	if !c.cfg.Overwrite && isFile(target) {
		return Failure(ErrUploadFileExists)
	}

	if err := c.writeFile(target, body); err != nil {
		logging.Warn("upload failed", zap.String("path", target), zap.Error(err))
		return Failure(ErrUpload)
	}

	cache := newCacheDir(dir, c.cfg, c.hidden)
	metrics.CacheRefresh("upload")
	cache.Refresh()

	return success(cache.Files(), nil)
}

func (c *Connector) writeFile(target string, body io.Reader) error {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, c.cfg.FileMode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(target)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Chmod(target, c.cfg.FileMode); err != nil {
		logging.Debug("chmod after upload failed", zap.String("path", target), zap.Error(err))
	}
	return nil
}
