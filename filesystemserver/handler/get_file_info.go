package handler

import (
	"bufio"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/gstbrowser/connector/internal/logging"
	"github.com/gstbrowser/connector/internal/metrics"
)

// imageExtensions are the file extensions inspected for dimensions and thumbnails.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".png":  true,
}

// decodableTypes are the sniffed content types the image decoders accept.
var decodableTypes = []string{"image/jpeg", "image/png", "image/gif"}

// Describe computes the descriptor of the entry at path. It never fails:
// entries that vanish or cannot be read are reported as KindUnknown, and
// images that cannot be decoded get no dimensions and a null thumbnail.
func Describe(path string, cfg Config) FileDescriptor {
	desc := FileDescriptor{
		Name: filepath.Base(path),
		Type: KindUnknown,
		Date: modTime(path),
	}

	if info, err := os.Stat(path); err == nil {
		switch {
		case info.Mode().IsRegular():
			size := info.Size()
			desc.Type = KindFile
			desc.Size = &size
		case info.IsDir():
			desc.Type = KindDir
		}
	}

	if desc.Type != KindFile || !isImageName(desc.Name) {
		empty := ""
		desc.Thumbnail = &empty
		return desc
	}

	info := inspectImage(path, cfg.ThumbMaxWidth, cfg.ThumbMaxHeight)
	if info.decoded {
		desc.ImgSize = &ImageSize{info.width, info.height}
	}
	if info.thumbnail != "" {
		desc.Thumbnail = &info.thumbnail
	}
	return desc
}

// modTime renders the entry's modification time in UTC. Broken symlinks
// fall back to the link's own time.
func modTime(path string) string {
	ts, err := times.Stat(path)
	if err != nil {
		if ts, err = times.Lstat(path); err != nil {
			return ""
		}
	}
	return ts.ModTime().UTC().Format(time.RFC3339Nano)
}

func isImageName(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// imageInfo is the outcome of inspecting an image file. decoded is false
// when the content is not a decodable image.
type imageInfo struct {
	decoded   bool
	width     int
	height    int
	thumbnail string
}

// inspectImage sniffs the file header before reading the rest, so large
// files that are not images are never loaded.
func inspectImage(path string, maxWidth, maxHeight int) imageInfo {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return imageInfo{}
	}
	if !decodable(mt) {
		metrics.Thumbnail("skipped")
		return imageInfo{}
	}

	f, err := os.Open(path)
	if err != nil {
		return imageInfo{}
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		logging.Debug("image decode failed", zap.String("path", path), zap.Error(err))
		metrics.Thumbnail("failed")
		return imageInfo{}
	}

	bounds := img.Bounds()
	info := imageInfo{
		decoded: true,
		width:   bounds.Dx(),
		height:  bounds.Dy(),
	}

	thumb, err := Thumbnail(img, maxWidth, maxHeight)
	if err != nil {
		logging.Debug("thumbnail encode failed", zap.String("path", path), zap.Error(err))
		metrics.Thumbnail("failed")
		return info
	}
	info.thumbnail = thumb
	metrics.Thumbnail("ok")
	return info
}

func decodable(mt *mimetype.MIME) bool {
	for _, t := range decodableTypes {
		if mt.Is(t) {
			return true
		}
	}
	return false
}
