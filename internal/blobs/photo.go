package blobs

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/disintegration/imaging"
)

var (
	// ErrPhotoTooLarge is returned when an upload exceeds the configured
	// size limit before any processing.
	ErrPhotoTooLarge = errors.New("photo exceeds the size limit")
	// ErrPhotoFormat is returned for content that is neither JPG, PNG
	// nor PDF.
	ErrPhotoFormat = errors.New("unsupported photo format")
)

// ProcessPhoto validates and normalizes a profile photo upload. Images
// are scaled down to fit the bounding box and re-encoded; PDF press
// cards pass through untouched.
func ProcessPhoto(content []byte, maxBytes int64, boundPx int) ([]byte, error) {
	if int64(len(content)) > maxBytes {
		return nil, ErrPhotoTooLarge
	}
	switch http.DetectContentType(content) {
	case "application/pdf":
		return content, nil
	case "image/jpeg":
		return resizePhoto(content, boundPx, imaging.JPEG)
	case "image/png":
		return resizePhoto(content, boundPx, imaging.PNG)
	default:
		return nil, ErrPhotoFormat
	}
}

func resizePhoto(content []byte, boundPx int, format imaging.Format) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	if img.Bounds().Dx() > boundPx || img.Bounds().Dy() > boundPx {
		img = imaging.Fit(img, boundPx, boundPx, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(95)); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}
	return buf.Bytes(), nil
}
