package handler

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/gobwas/glob"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/gstbrowser/connector/internal/logging"
)

var namePattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// ValidName reports whether name is acceptable for a created or renamed
// entry: lowercase letters, digits, hyphen, underscore and dot. The
// relative names "." and ".." and the cache sidecar are never valid.
func ValidName(name string) bool {
	if name == "." || name == ".." || name == CacheFileName {
		return false
	}
	return namePattern.MatchString(name)
}

// entryName reports whether name refers to a single existing entry of a
// directory: one path component, neither "." nor "..", and not the sidecar.
func entryName(name string) bool {
	if name == "" || name == "." || name == ".." || name == CacheFileName {
		return false
	}
	return filepath.Base(filepath.Clean(filepath.FromSlash(name))) == name
}

// SanitizeName turns an uploaded file name into the stored basename:
// accents are stripped and spaces become hyphens.
func SanitizeName(name string) string {
	name = filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, `\`, "/")))

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	return strings.ReplaceAll(stripped, " ", "-")
}

// hiddenSet matches entry names that never appear in listings or the tree.
type hiddenSet []glob.Glob

func compileHidden(patterns []string) hiddenSet {
	set := make(hiddenSet, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			logging.Warn("ignoring invalid hidden pattern", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		set = append(set, g)
	}
	return set
}

func (h hiddenSet) match(name string) bool {
	if name == CacheFileName {
		return true
	}
	for _, g := range h {
		if g.Match(name) {
			return true
		}
	}
	return false
}
