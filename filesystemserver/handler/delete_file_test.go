package handler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelete(t *testing.T) {
	c, tmpDir := newTestConnector(t)

	t.Run("delete a file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test_file.txt")
		writeFile(t, filePath, "test content")
		require.Contains(t, fileNames(c.Files("").Files), "test_file.txt")

		res := c.Delete("", "test_file.txt")
		require.True(t, res.OK())
		assert.Nil(t, res.Tree)
		assert.NotContains(t, fileNames(res.Files), "test_file.txt")

		// Verify file was deleted
		_, err := os.Stat(filePath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("delete an empty directory with its sidecar", func(t *testing.T) {
		dirPath := filepath.Join(tmpDir, "empty_directory")
		require.NoError(t, os.Mkdir(dirPath, 0755))
		require.True(t, c.Files("empty_directory").OK())
		_, err := os.Stat(filepath.Join(dirPath, CacheFileName))
		require.NoError(t, err)

		res := c.Delete("", "empty_directory")
		require.True(t, res.OK())
		assert.NotContains(t, fileNames(res.Files), "empty_directory")
		require.Len(t, res.Tree, 1)
		assert.Empty(t, res.Tree[0].Children)

		_, err = os.Stat(dirPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("delete an empty directory without sidecar", func(t *testing.T) {
		dirPath := filepath.Join(tmpDir, "never_listed")
		require.NoError(t, os.Mkdir(dirPath, 0755))

		res := c.Delete("", "never_listed")
		require.True(t, res.OK())
		_, err := os.Stat(dirPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("directory with contents is left untouched", func(t *testing.T) {
		dirPath := filepath.Join(tmpDir, "directory_with_contents")
		require.NoError(t, os.Mkdir(dirPath, 0755))
		writeFile(t, filepath.Join(dirPath, "file.txt"), "content")
		require.True(t, c.Files("directory_with_contents").OK())
		require.Contains(t, fileNames(c.Files("").Files), "directory_with_contents")

		assert.Equal(t, Failure(ErrDeleteNotEmptyDir), c.Delete("", "directory_with_contents"))

		_, err := os.Stat(filepath.Join(dirPath, "file.txt"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(dirPath, CacheFileName))
		assert.NoError(t, err)
		assert.Contains(t, fileNames(c.Files("").Files), "directory_with_contents")
	})

	t.Run("directory holding only hidden entries is not empty", func(t *testing.T) {
		dirPath := filepath.Join(tmpDir, "dotted")
		require.NoError(t, os.Mkdir(dirPath, 0755))
		writeFile(t, filepath.Join(dirPath, ".keep"), "")

		assert.Equal(t, Failure(ErrDeleteNotEmptyDir), c.Delete("", "dotted"))
	})

	t.Run("delete inside a subdirectory", func(t *testing.T) {
		writeFile(t, filepath.Join(tmpDir, "dotted", "gone.txt"), "x")
		res := c.Delete("dotted", "gone.txt")
		require.True(t, res.OK())
		assert.Empty(t, res.Files)
	})

	t.Run("missing entry", func(t *testing.T) {
		assert.Equal(t, Failure(ErrFileNotFound), c.Delete("", "non_existent.txt"))
	})

	t.Run("empty name", func(t *testing.T) {
		assert.Equal(t, Failure(ErrInvalidParameter), c.Delete("", ""))
	})
}
