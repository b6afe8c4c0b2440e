package domain

import (
	"errors"
	"time"
)

var (
	ErrImageNotFound      = errors.New("image not found")
	ErrInvalidImage       = errors.New("invalid or corrupt image data")
	ErrInvalidConfidence  = errors.New("confidence must be between 0 and 1")
	ErrMissingObjectClass = errors.New("object class is required")
	ErrInvalidDimensions  = errors.New("image width and height must be positive")
)

type Image struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type,omitempty"`
	Description string    `json:"description,omitempty"`
	StorageURI  string    `json:"storage_uri"`
	OwnerID     string    `json:"owner_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DetectedObject is an object found in an image. BoundingBox holds [x, y]
// pixel pairs; Latitude and Longitude are set only when the object was placed on the map.
type DetectedObject struct {
	ID          string       `json:"id"`
	ImageID     string       `json:"image_id"`
	ObjectClass string       `json:"object_class"`
	Confidence  float64      `json:"confidence"`
	BoundingBox [][2]float64 `json:"bounding_box,omitempty"`
	Latitude    *float64     `json:"latitude,omitempty"`
	Longitude   *float64     `json:"longitude,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (d *DetectedObject) HasLocation() bool {
	return d.Latitude != nil && d.Longitude != nil
}
