package domain

import "github.com/paulmach/orb/geojson"

const (
	SourceGhost     = "ghost"
	SourceDjinn     = "djinn"
	SourceTesseract = "tesseract"
)

// Marker is a point on the shared map. Position is [lat, lng].
type Marker struct {
	ID           string     `json:"id"`
	Position     [2]float64 `json:"position"`
	PopupContent string     `json:"popupContent"`
	Source       string     `json:"source"`
}

type MapData struct {
	Markers    []Marker           `json:"markers"`
	Footprints []*geojson.Feature `json:"footprints"`
}
