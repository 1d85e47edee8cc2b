package emotionService

import (
	"errors"
	"image"
	"image/color"
	"io"
	"sync"
	"sync/atomic"

	"EmotionLens/internal/entity"
	"EmotionLens/pkg/camera"
	"EmotionLens/pkg/vision"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func solidImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 90, B: 60, A: 255})
		}
	}
	return img
}

type fakeCamera struct {
	mu       sync.Mutex
	reads    int
	failAt   int // 1-based read number that fails, 0 never
	closed   bool
	closeCnt int
}

func (c *fakeCamera) Read() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	if c.failAt > 0 && c.reads >= c.failAt {
		return nil, camera.ErrReadFailed
	}
	return solidImage(640, 480), nil
}

func (c *fakeCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.closeCnt++
	return nil
}

func (c *fakeCamera) snapshot() (reads int, closed bool, closeCnt int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads, c.closed, c.closeCnt
}

func openerFor(c *fakeCamera) camera.Opener {
	return func() (camera.Camera, error) { return c, nil }
}

type fakeLocator struct {
	faces []entity.FaceRegion
}

func (l *fakeLocator) Locate(image.Image) ([]entity.FaceRegion, error) {
	return l.faces, nil
}

func (l *fakeLocator) Close() error { return nil }

// fakeNetwork returns fixed scores and counts forward passes. The first
// failFirst calls return an error.
type fakeNetwork struct {
	scores    []float32
	failFirst int32
	calls     atomic.Int32
	badShape  atomic.Bool
}

func (n *fakeNetwork) Forward(t vision.Tensor) ([]float32, error) {
	call := n.calls.Add(1)
	shape := t.Shape()
	if shape[0] != 1 || shape[1] != vision.InputSize || shape[2] != vision.InputSize || shape[3] != vision.InputChannels {
		n.badShape.Store(true)
	}
	if call <= n.failFirst {
		return nil, errors.New("backend hiccup")
	}
	out := make([]float32, len(n.scores))
	copy(out, n.scores)
	return out, nil
}

func (n *fakeNetwork) Close() error { return nil }

// happyScores peaks on Happy with probability 0.7.
var happyScores = []float32{0.05, 0.02, 0.03, 0.7, 0.1, 0.05, 0.05}

var centerFace = []entity.FaceRegion{{X: 200, Y: 120, Width: 220, Height: 220}}
