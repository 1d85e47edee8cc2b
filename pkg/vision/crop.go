package vision

import (
	"errors"
	"image"
	"image/draw"

	"EmotionLens/internal/entity"
)

var ErrEmptyRegion = errors.New("face region lies outside the image")

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Crop returns the part of img covered by region, clamped to the image bounds.
// Region coordinates are relative to the image origin.
func Crop(img image.Image, region entity.FaceRegion) (image.Image, error) {
	b := img.Bounds()
	r := region.Rect().Add(b.Min).Intersect(b)
	if r.Empty() {
		return nil, ErrEmptyRegion
	}

	if si, ok := img.(subImager); ok {
		return si.SubImage(r), nil
	}

	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out, nil
}
