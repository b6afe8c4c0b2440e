package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelToGeo(t *testing.T) {
	bounds := Bounds{
		SouthWest: LatLng{Lat: 10, Lng: 20},
		NorthEast: LatLng{Lat: 12, Lng: 24},
	}

	tests := []struct {
		name   string
		px, py float64
		want   LatLng
	}{
		{name: "top left is north west", px: 0, py: 0, want: LatLng{Lat: 12, Lng: 20}},
		{name: "bottom right is south east", px: 200, py: 100, want: LatLng{Lat: 10, Lng: 24}},
		{name: "centre", px: 100, py: 50, want: LatLng{Lat: 11, Lng: 22}},
		{name: "clamped below", px: -50, py: -10, want: LatLng{Lat: 12, Lng: 20}},
		{name: "clamped above", px: 900, py: 900, want: LatLng{Lat: 10, Lng: 24}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PixelToGeo(tt.px, tt.py, 200, 100, bounds)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Lat, got.Lat, 1e-9)
			assert.InDelta(t, tt.want.Lng, got.Lng, 1e-9)
		})
	}
}

func TestPixelToGeo_InvalidDimensions(t *testing.T) {
	_, err := PixelToGeo(1, 1, 0, 100, Bounds{})
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = PixelToGeo(1, 1, 100, -1, Bounds{})
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}
