package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"EmotionLens/internal/entity"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const boxThickness = 2

var (
	// UploadBoxColor outlines every detected face on the upload preview.
	UploadBoxColor = color.RGBA{R: 99, G: 102, B: 241, A: 255}
	labelTextColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// ParseHexColor parses "#rrggbb"; anything else yields the fallback indigo.
func ParseHexColor(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return UploadBoxColor
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return UploadBoxColor
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

func OverlayText(p entity.PredictionResult) string {
	return fmt.Sprintf("%s (%.0f%%)", p.Label, p.Confidence*100)
}

// Annotate copies img and outlines every face. When prediction is non-nil the
// boxes take the label color and each one gets a filled caption above it.
func Annotate(img image.Image, faces []entity.FaceRegion, prediction *entity.PredictionResult) *image.RGBA {
	boxColor := ParseHexColor(entity.FallbackColor)
	label := ""
	if prediction != nil {
		boxColor = ParseHexColor(prediction.Label.Info().Color)
		label = OverlayText(*prediction)
	}
	return DrawFaces(img, faces, boxColor, label)
}

func DrawFaces(img image.Image, faces []entity.FaceRegion, c color.RGBA, label string) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	for _, f := range faces {
		r := f.Rect()
		DrawRect(out, r, c, boxThickness)
		if label != "" {
			drawCaption(out, r.Min, label, c)
		}
	}
	return out
}

func DrawRect(dst draw.Image, r image.Rectangle, c color.Color, thickness int) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

// drawCaption fills a box ending at the face's top edge and writes text on it.
func drawCaption(dst draw.Image, at image.Point, text string, bg color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelTextColor),
		Face: face,
	}
	tw := d.MeasureString(text).Ceil()
	th := face.Metrics().Height.Ceil()

	box := image.Rect(at.X, at.Y-th-10, at.X+tw, at.Y)
	draw.Draw(dst, box.Intersect(dst.Bounds()), image.NewUniform(bg), image.Point{}, draw.Src)

	d.Dot = fixed.P(at.X, at.Y-5)
	d.DrawString(text)
}
