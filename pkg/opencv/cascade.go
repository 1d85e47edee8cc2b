package opencv

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"EmotionLens/internal/entity"
	"EmotionLens/pkg/vision"

	"gocv.io/x/gocv"
)

const CascadeFile = "haarcascade_frontalface_default.xml"

var cascadeDirs = []string{
	"./models/haarcascades",
	"/usr/local/share/opencv4/haarcascades",
	"/usr/share/opencv4/haarcascades",
	"/usr/share/opencv/haarcascades",
	"/opt/homebrew/share/opencv4/haarcascades",
}

// ResolveCascadePath returns override when set, else the first known install
// location holding the frontal face cascade.
func ResolveCascadePath(override string) string {
	if override != "" {
		return override
	}
	for _, dir := range cascadeDirs {
		p := filepath.Join(dir, CascadeFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return CascadeFile
}

type cascadeLocator struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
}

func NewCascadeLocator(path string) (vision.FaceLocator, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("error reading cascade file: %s", path)
	}
	return &cascadeLocator{classifier: classifier}, nil
}

func (l *cascadeLocator) Locate(img image.Image) ([]entity.FaceRegion, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image to mat: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	// ImageToMatRGB stores pixels in OpenCV's BGR order
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	l.mu.Lock()
	rects := l.classifier.DetectMultiScaleWithParams(
		gray,
		vision.ScaleFactor, vision.MinNeighbors, 0,
		image.Pt(0, 0), image.Pt(0, 0),
	)
	l.mu.Unlock()

	faces := make([]entity.FaceRegion, 0, len(rects))
	for _, r := range rects {
		faces = append(faces, entity.FaceRegionFromRect(r))
	}
	return faces, nil
}

func (l *cascadeLocator) Close() error {
	return l.classifier.Close()
}
