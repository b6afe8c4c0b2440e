// Package detector holds the object detectors Djinn can run over map imagery.
package detector

import (
	"context"
	"image"

	"selkie-backend/internal/djinn/domain"
)

// Noop finds nothing. It stands in until a model-backed detector is configured.
type Noop struct{}

func (Noop) Detect(context.Context, image.Image) ([]domain.RawDetection, error) {
	return nil, nil
}
