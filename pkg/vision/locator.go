package vision

import (
	"image"

	"EmotionLens/internal/entity"
)

// Detector parameters shared by every FaceLocator implementation.
const (
	ScaleFactor  = 1.1
	MinNeighbors = 4
)

// FaceLocator finds faces in a color image. An empty result means no face was
// found and is not an error. Implementations keep no state between calls.
type FaceLocator interface {
	Locate(img image.Image) ([]entity.FaceRegion, error)
	Close() error
}
