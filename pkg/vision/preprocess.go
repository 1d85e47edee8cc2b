package vision

import (
	"errors"
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

const (
	InputSize     = 224
	InputChannels = 3
)

var ErrEmptyImage = errors.New("image has no pixels")

// Tensor is a single NHWC sample with values in [0,1].
type Tensor struct {
	Data     []float32
	Height   int
	Width    int
	Channels int
}

func (t Tensor) Shape() []int {
	return []int{1, t.Height, t.Width, t.Channels}
}

func (t Tensor) At(y, x, c int) float32 {
	return t.Data[(y*t.Width+x)*t.Channels+c]
}

// ToRGB copies img into an opaque NRGBA with origin (0,0). Gray input is replicated
// across channels and any alpha channel is discarded.
func ToRGB(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.A = 0xff
			out.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return out
}

// Preprocess converts img to a 1x224x224x3 tensor scaled to [0,1].
func Preprocess(img image.Image) (Tensor, error) {
	if img == nil || img.Bounds().Empty() {
		return Tensor{}, ErrEmptyImage
	}

	resized := resize.Resize(InputSize, InputSize, ToRGB(img), resize.Bilinear)
	rb := resized.Bounds()

	t := Tensor{
		Data:     make([]float32, InputSize*InputSize*InputChannels),
		Height:   InputSize,
		Width:    InputSize,
		Channels: InputChannels,
	}
	i := 0
	for y := rb.Min.Y; y < rb.Max.Y; y++ {
		for x := rb.Min.X; x < rb.Max.X; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			t.Data[i] = float32(r>>8) / 255
			t.Data[i+1] = float32(g>>8) / 255
			t.Data[i+2] = float32(b>>8) / 255
			i += InputChannels
		}
	}
	return t, nil
}
