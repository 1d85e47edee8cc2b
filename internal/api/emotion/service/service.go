package emotionService

import (
	"EmotionLens/internal/api/emotion"
	"EmotionLens/internal/entity"
	"EmotionLens/pkg/camera"
	"EmotionLens/pkg/classifier"
	"EmotionLens/pkg/vision"
	"image"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	DefaultInferEvery    = 5
	DefaultFrameInterval = 30 * time.Millisecond
)

type IEmotionService interface {
	DetectUpload(ctx context.Context, img image.Image) (*emotion.UploadDetection, error)
	AnalyzeUpload(ctx context.Context, img image.Image) (*emotion.UploadAnalysis, error)
}

type ILiveService interface {
	Start()
	Stop()
	Status() entity.SessionState
	Run(ctx context.Context, sink FrameSink) error
}

// FrameSink receives every annotated live frame. Returning an error ends the loop.
type FrameSink interface {
	Frame(frame emotion.LiveFrame) error
}

type FrameSinkFunc func(frame emotion.LiveFrame) error

func (f FrameSinkFunc) Frame(frame emotion.LiveFrame) error {
	return f(frame)
}

type LiveConfig struct {
	InferEvery    int
	FrameInterval time.Duration
}

type emotionService struct {
	log        *logrus.Logger
	locator    vision.FaceLocator
	classifier classifier.IClassifier
}

func NewEmotionService(
	log *logrus.Logger,
	locator vision.FaceLocator,
	classifier classifier.IClassifier,
) IEmotionService {
	return &emotionService{
		log:        log,
		locator:    locator,
		classifier: classifier,
	}
}

func NewLiveService(
	log *logrus.Logger,
	openCamera camera.Opener,
	locator vision.FaceLocator,
	classifier classifier.IClassifier,
	cfg LiveConfig,
) ILiveService {
	if cfg.InferEvery <= 0 {
		cfg.InferEvery = DefaultInferEvery
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	return &liveService{
		log:        log,
		openCamera: openCamera,
		locator:    locator,
		classifier: classifier,
		cfg:        cfg,
	}
}
