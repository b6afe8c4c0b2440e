package domain

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is the visible map rectangle in the shape Leaflet serializes LatLngBounds.
type Bounds struct {
	SouthWest LatLng `json:"_southWest"`
	NorthEast LatLng `json:"_northEast"`
}

// PixelToGeo maps a pixel in a width x height image onto bounds by linear
// interpolation. Pixel y grows downwards, so y=0 is the northern edge.
// Pixels outside the image are clamped to its edges.
func PixelToGeo(px, py float64, width, height int, bounds Bounds) (LatLng, error) {
	if width <= 0 || height <= 0 {
		return LatLng{}, ErrInvalidDimensions
	}

	w, h := float64(width), float64(height)
	px = max(0, min(px, w))
	py = max(0, min(py, h))

	lngSpan := bounds.NorthEast.Lng - bounds.SouthWest.Lng
	latSpan := bounds.NorthEast.Lat - bounds.SouthWest.Lat

	return LatLng{
		Lat: bounds.NorthEast.Lat - (py/h)*latSpan,
		Lng: bounds.SouthWest.Lng + (px/w)*lngSpan,
	}, nil
}

// RawDetection is a detector hit in pixel space. BBox is [x1, y1, x2, y2].
type RawDetection struct {
	ClassName  string
	Confidence float64
	BBox       []float64
}

type MapDetection struct {
	ID         string  `json:"id"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	Location   LatLng  `json:"location"`
}

type MapDetectionResult struct {
	Detections []MapDetection `json:"detections"`
}
