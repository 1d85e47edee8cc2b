package emotionService

import (
	"EmotionLens/internal/api/emotion"
	"EmotionLens/internal/entity"
	"EmotionLens/pkg/camera"
	"EmotionLens/pkg/classifier"
	"EmotionLens/pkg/log"
	"EmotionLens/pkg/vision"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type liveService struct {
	log        *logrus.Logger
	openCamera camera.Opener
	locator    vision.FaceLocator
	classifier classifier.IClassifier
	cfg        LiveConfig

	active atomic.Bool
	// owner is held for as long as a loop has the camera open.
	owner sync.Mutex

	mu   sync.RWMutex
	last *entity.PredictionResult
}

func (s *liveService) Start() {
	if !s.active.Swap(true) {
		s.log.Info("Live detection started")
	}
}

func (s *liveService) Stop() {
	if s.active.Swap(false) {
		s.log.Info("Live detection stopped")
	}
}

func (s *liveService) Status() entity.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := entity.SessionState{Active: s.active.Load()}
	if s.last != nil {
		p := *s.last
		state.LastPrediction = &p
	}
	return state
}

func (s *liveService) setLast(p entity.PredictionResult) {
	s.mu.Lock()
	s.last = &p
	s.mu.Unlock()
}

// Run drives the capture loop until Stop is called, ctx is done, the camera
// fails or the sink rejects a frame. The camera is released on every exit.
func (s *liveService) Run(ctx context.Context, sink FrameSink) error {
	if !s.active.Load() {
		return emotion.ErrLiveInactive
	}
	if !s.owner.TryLock() {
		return emotion.ErrCameraBusy
	}
	defer s.owner.Unlock()

	cam, err := s.openCamera()
	if err != nil {
		s.active.Store(false)
		s.log.WithFields(log.Fields{
			"error": err.Error(),
		}).Error("Failed to open camera")
		return fmt.Errorf("%w: %v", emotion.ErrCameraUnavailable, err)
	}
	defer func() {
		if err := cam.Close(); err != nil {
			s.log.Warnf("Error releasing camera: %v", err)
		}
		s.log.Debug("Camera released")
	}()

	var last *entity.PredictionResult
	wait := time.NewTimer(s.cfg.FrameInterval)
	wait.Stop()
	defer wait.Stop()

	for frameCount := 0; s.active.Load(); frameCount++ {
		frame, err := cam.Read()
		if err != nil {
			s.active.Store(false)
			s.log.WithFields(log.Fields{
				"frame": frameCount,
				"error": err.Error(),
			}).Error("Failed to read frame")
			return fmt.Errorf("%w: %v", emotion.ErrCameraRead, err)
		}

		faces, err := s.locator.Locate(frame)
		if err != nil {
			s.log.Warnf("Face location failed on frame %d: %v", frameCount, err)
			faces = nil
		}

		if len(faces) > 0 && frameCount%s.cfg.InferEvery == 0 {
			if p, err := s.infer(frame, faces[0]); err != nil {
				s.log.Debugf("Inference skipped on frame %d: %v", frameCount, err)
			} else {
				last = &p
				s.setLast(p)
			}
		}

		if err := sink.Frame(emotion.LiveFrame{
			Index:      frameCount,
			Image:      vision.Annotate(frame, faces, last),
			Faces:      faces,
			Prediction: last,
		}); err != nil {
			s.active.Store(false)
			return fmt.Errorf("deliver frame: %w", err)
		}

		wait.Reset(s.cfg.FrameInterval)
		select {
		case <-ctx.Done():
			s.active.Store(false)
			return nil
		case <-wait.C:
		}
	}

	return nil
}

func (s *liveService) infer(frame image.Image, face entity.FaceRegion) (entity.PredictionResult, error) {
	crop, err := vision.Crop(frame, face)
	if err != nil {
		return entity.PredictionResult{}, err
	}
	return s.classifier.Classify(crop)
}
