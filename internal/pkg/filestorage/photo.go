package filestorage

import (
	"bytes"
	"image"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

// Photo normalization bounds
const (
	PhotoMaxWidth    = 600
	PhotoMaxHeight   = 600
	PhotoJPEGQuality = 85
	// PhotoMaxPixels caps the declared canvas decoded in memory; larger images are stored as is.
	PhotoMaxPixels = 40_000_000
)

// NormalizedFile is an attachment ready to upload.
type NormalizedFile struct {
	Data        []byte
	ContentType string
}

// NormalizePhoto fits a student photo into PhotoMaxWidth x PhotoMaxHeight and re-encodes it as JPEG.
// Input that cannot be decoded as an image, or declares more than PhotoMaxPixels, is returned unchanged.
func NormalizePhoto(data []byte, filename string) NormalizedFile {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		logger.Debug().Err(err).Str("filename", filename).Msg("Photo is not a decodable image, storing as is")
		return PassThrough(data, filename)
	}
	if int64(cfg.Width)*int64(cfg.Height) > PhotoMaxPixels {
		logger.Warn().Int("width", cfg.Width).Int("height", cfg.Height).Str("filename", filename).
			Msg("Photo canvas too large to normalize, storing as is")
		return PassThrough(data, filename)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		logger.Debug().Err(err).Str("filename", filename).Msg("Photo is not a decodable image, storing as is")
		return PassThrough(data, filename)
	}

	img = imaging.Fit(img, PhotoMaxWidth, PhotoMaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(PhotoJPEGQuality)); err != nil {
		logger.Warn().Err(err).Str("filename", filename).Msg("Failed to re-encode photo, storing as is")
		return PassThrough(data, filename)
	}

	return NormalizedFile{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
	}
}

// PassThrough wraps an attachment that is stored byte for byte.
func PassThrough(data []byte, filename string) NormalizedFile {
	return NormalizedFile{
		Data:        data,
		ContentType: contentTypeOf(data, filename),
	}
}

func contentTypeOf(data []byte, filename string) string {
	detected := http.DetectContentType(data)
	if detected != "application/octet-stream" {
		return detected
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		return byExt
	}
	return detected
}
