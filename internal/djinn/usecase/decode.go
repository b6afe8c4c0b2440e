package usecase

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	// Registered formats accepted for map snapshots.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"selkie-backend/internal/djinn/domain"
)

// DecodeBase64Image decodes a base64 image, with or without a data URI prefix.
func DecodeBase64Image(data string) (image.Image, error) {
	if i := strings.IndexByte(data, ','); i >= 0 {
		data = data[i+1:]
	}
	data = strings.TrimSpace(data)

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidImage, err)
		}
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidImage, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: zero dimensions", domain.ErrInvalidImage)
	}
	return img, nil
}
