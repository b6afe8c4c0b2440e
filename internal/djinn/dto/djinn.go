package dto

import "selkie-backend/internal/djinn/domain"

type MapViewRequest struct {
	ImageData string         `json:"image_data" binding:"required"`
	Bounds    *domain.Bounds `json:"bounds" binding:"required"`
}

type RecordDetectionRequest struct {
	ObjectClass string       `json:"object_class" binding:"required"`
	Confidence  *float64     `json:"confidence" binding:"required"`
	BoundingBox [][2]float64 `json:"bounding_box"`
	Latitude    *float64     `json:"latitude"`
	Longitude   *float64     `json:"longitude"`
}
