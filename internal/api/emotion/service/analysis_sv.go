package emotionService

import (
	"EmotionLens/internal/api/emotion"
	contextPkg "EmotionLens/pkg/context"
	"EmotionLens/pkg/log"
	"EmotionLens/pkg/vision"
	"fmt"
	"image"

	"golang.org/x/net/context"
)

func (s *emotionService) DetectUpload(ctx context.Context, img image.Image) (*emotion.UploadDetection, error) {
	rgb := vision.ToRGB(img)

	faces, err := s.locator.Locate(rgb)
	if err != nil {
		return nil, fmt.Errorf("locate faces: %w", err)
	}

	s.log.WithFields(log.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"faces":      len(faces),
		"width":      rgb.Bounds().Dx(),
		"height":     rgb.Bounds().Dy(),
	}).Debug("Located faces on uploaded image")

	if len(faces) == 0 {
		return nil, emotion.ErrNoFaceDetected
	}

	return &emotion.UploadDetection{
		Faces:   faces,
		Preview: vision.DrawFaces(rgb, faces, vision.UploadBoxColor, ""),
	}, nil
}

func (s *emotionService) AnalyzeUpload(ctx context.Context, img image.Image) (*emotion.UploadAnalysis, error) {
	detected, err := s.DetectUpload(ctx, img)
	if err != nil {
		return nil, err
	}

	face, err := vision.Crop(img, detected.Faces[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", emotion.ErrInferenceFailed, err)
	}

	prediction, err := s.classifier.Classify(face)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", emotion.ErrInferenceFailed, err)
	}

	s.log.WithFields(log.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"label":      prediction.Label.String(),
		"confidence": prediction.Confidence,
	}).Info("Analyzed uploaded image")

	return &emotion.UploadAnalysis{
		UploadDetection: *detected,
		Prediction:      prediction,
	}, nil
}
