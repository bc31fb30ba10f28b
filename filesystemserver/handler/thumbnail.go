package handler

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

const (
	ThumbnailQuality = 90

	thumbnailScheme = "data:image/jpeg;base64,"
)

// Thumbnail scales img to fit within maxWidth x maxHeight, preserving the
// aspect ratio, and returns it as a base64 JPEG data URI. Images already
// inside the bounds keep their size.
func Thumbnail(img image.Image, maxWidth, maxHeight int) (string, error) {
	thumb := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: ThumbnailQuality}); err != nil {
		return "", err
	}
	return thumbnailScheme + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
