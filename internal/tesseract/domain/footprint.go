package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	ErrMissingFootprint = errors.New("footprint_geojson is required")
	ErrInvalidFootprint = errors.New("footprint_geojson must be a GeoJSON Polygon or MultiPolygon")
)

// ParseFootprint accepts a Polygon or MultiPolygon geometry, bare or wrapped
// in a Feature. Every ring must be closed and have at least four positions.
func ParseFootprint(raw map[string]any) (orb.Geometry, error) {
	if len(raw) == 0 {
		return nil, ErrMissingFootprint
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFootprint, err)
	}

	var geom orb.Geometry
	if raw["type"] == "Feature" {
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFootprint, err)
		}
		geom = f.Geometry
	} else {
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFootprint, err)
		}
		geom = g.Geometry()
	}

	switch g := geom.(type) {
	case orb.Polygon:
		if err := checkPolygon(g); err != nil {
			return nil, err
		}
	case orb.MultiPolygon:
		if len(g) == 0 {
			return nil, fmt.Errorf("%w: empty multipolygon", ErrInvalidFootprint)
		}
		for _, p := range g {
			if err := checkPolygon(p); err != nil {
				return nil, err
			}
		}
	default:
		return nil, ErrInvalidFootprint
	}
	return geom, nil
}

func checkPolygon(p orb.Polygon) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: polygon has no rings", ErrInvalidFootprint)
	}
	for _, ring := range p {
		if len(ring) < 4 || !ring.Closed() {
			return fmt.Errorf("%w: rings must be closed with at least four positions", ErrInvalidFootprint)
		}
	}
	return nil
}
