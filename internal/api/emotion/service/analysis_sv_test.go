package emotionService

import (
	"errors"
	"image/color"
	"testing"

	"EmotionLens/internal/api/emotion"
	"EmotionLens/internal/entity"
	"EmotionLens/pkg/classifier"
	"EmotionLens/pkg/vision"

	"golang.org/x/net/context"
)

func TestAnalyzeUploadSingleFace(t *testing.T) {
	net := &fakeNetwork{scores: happyScores}
	svc := NewEmotionService(quietLogger(), &fakeLocator{faces: centerFace}, classifier.New(net))

	res, err := svc.AnalyzeUpload(context.Background(), solidImage(640, 480))
	if err != nil {
		t.Fatalf("AnalyzeUpload: %v", err)
	}
	if res.Prediction.Label != entity.Happy {
		t.Fatalf("label = %v, want Happy", res.Prediction.Label)
	}
	if got := res.Prediction.Confidence; got < 0.69 || got > 0.71 {
		t.Fatalf("confidence = %v, want 0.7", got)
	}
	if len(res.Faces) != 1 || res.Faces[0] != centerFace[0] {
		t.Fatalf("faces = %+v", res.Faces)
	}
	if b := res.Preview.Bounds(); b.Dx() != 640 || b.Dy() != 480 {
		t.Fatalf("preview size = %v", b)
	}
	if net.calls.Load() != 1 {
		t.Fatalf("forward calls = %d, want 1", net.calls.Load())
	}
	if net.badShape.Load() {
		t.Fatal("network received a tensor with the wrong shape")
	}
}

func TestDetectUploadDrawsIndigoBoxes(t *testing.T) {
	svc := NewEmotionService(quietLogger(), &fakeLocator{faces: centerFace}, classifier.New(&fakeNetwork{scores: happyScores}))

	res, err := svc.DetectUpload(context.Background(), solidImage(640, 480))
	if err != nil {
		t.Fatalf("DetectUpload: %v", err)
	}
	got := color.RGBAModel.Convert(res.Preview.At(centerFace[0].X, centerFace[0].Y+50)).(color.RGBA)
	if got != vision.UploadBoxColor {
		t.Fatalf("box edge = %v, want %v", got, vision.UploadBoxColor)
	}
}

func TestUploadWithoutFace(t *testing.T) {
	net := &fakeNetwork{scores: happyScores}
	svc := NewEmotionService(quietLogger(), &fakeLocator{}, classifier.New(net))

	if _, err := svc.DetectUpload(context.Background(), solidImage(320, 240)); !errors.Is(err, emotion.ErrNoFaceDetected) {
		t.Fatalf("DetectUpload err = %v, want ErrNoFaceDetected", err)
	}
	if _, err := svc.AnalyzeUpload(context.Background(), solidImage(320, 240)); !errors.Is(err, emotion.ErrNoFaceDetected) {
		t.Fatalf("AnalyzeUpload err = %v, want ErrNoFaceDetected", err)
	}
	if net.calls.Load() != 0 {
		t.Fatal("classifier must not run without a face")
	}
}

func TestAnalyzeUploadInferenceFailure(t *testing.T) {
	net := &fakeNetwork{scores: happyScores, failFirst: 1}
	svc := NewEmotionService(quietLogger(), &fakeLocator{faces: centerFace}, classifier.New(net))

	_, err := svc.AnalyzeUpload(context.Background(), solidImage(640, 480))
	if !errors.Is(err, emotion.ErrInferenceFailed) {
		t.Fatalf("err = %v, want ErrInferenceFailed", err)
	}
}
