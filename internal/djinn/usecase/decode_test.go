package usecase

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"selkie-backend/internal/djinn/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeBase64Image(t *testing.T) {
	raw := pngBase64(t, 40, 20)

	t.Run("plain", func(t *testing.T) {
		img, err := DecodeBase64Image(raw)
		require.NoError(t, err)
		assert.Equal(t, 40, img.Bounds().Dx())
		assert.Equal(t, 20, img.Bounds().Dy())
	})

	t.Run("data uri", func(t *testing.T) {
		img, err := DecodeBase64Image("data:image/png;base64," + raw)
		require.NoError(t, err)
		assert.Equal(t, 40, img.Bounds().Dx())
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := DecodeBase64Image("!!!not-base64!!!")
		assert.ErrorIs(t, err, domain.ErrInvalidImage)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := DecodeBase64Image(base64.StdEncoding.EncodeToString([]byte("plain text")))
		assert.ErrorIs(t, err, domain.ErrInvalidImage)
	})
}
