package services

import (
	"bytes"
	"fmt"
	"strings"

	"letrystudio/config"
	"letrystudio/models"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// NormalizeImage checks that an upload is an image and fits it inside
// cfg.MaxDimension, honouring EXIF orientation. Formats the decoder does not
// know (HEIC, AVIF) are passed through as uploaded.
func NormalizeImage(payload []byte, cfg config.ImagesConfig) ([]byte, string, error) {
	if len(payload) == 0 {
		return nil, "", models.NewValidationError("image is empty")
	}
	detected := mimetype.Detect(payload)
	mimeType := detected.String()
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", models.NewValidationError("unsupported file type: %s", mimeType)
	}

	img, err := imaging.Decode(bytes.NewReader(payload), imaging.AutoOrientation(true))
	if err != nil {
		return payload, mimeType, nil
	}

	bounds := img.Bounds()
	fits := cfg.MaxDimension <= 0 || (bounds.Dx() <= cfg.MaxDimension && bounds.Dy() <= cfg.MaxDimension)
	// only JPEG carries an orientation tag worth re-encoding for
	if fits && !detected.Is("image/jpeg") {
		return payload, mimeType, nil
	}
	if !fits {
		img = imaging.Fit(img, cfg.MaxDimension, cfg.MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if detected.Is("image/png") {
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, "", fmt.Errorf("failed to encode image to png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	}
	quality := cfg.JPEGQuality
	if quality <= 0 {
		quality = 90
	}
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image to jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
