package config

import (
	"os"
	"strconv"
	"time"

	"EmotionLens/pkg/camera"
	"EmotionLens/pkg/log"
	"EmotionLens/pkg/utils"

	"github.com/sirupsen/logrus"
)

// Settings is the process configuration read from the environment.
type Settings struct {
	Port           string        `validate:"required,numeric"`
	Env            string        `validate:"omitempty,oneof=development production test"`
	ModelPath      string
	CascadePath    string
	CameraDriver   string        `validate:"required,oneof=opencv v4l2"`
	CameraDevice   string        `validate:"required"`
	InferEvery     int           `validate:"min=1"`
	FrameInterval  time.Duration `validate:"gt=0"`
	UploadMaxBytes int64         `validate:"min=1024"`
	RateLimit      float64       `validate:"gt=0"`
	RateBurst      int           `validate:"min=1"`
}

func DefaultSettings() Settings {
	return Settings{
		Port:           "3000",
		CameraDriver:   camera.DriverOpenCV,
		CameraDevice:   "0",
		InferEvery:     5,
		FrameInterval:  30 * time.Millisecond,
		UploadMaxBytes: utils.DefaultMaxFileSize,
		RateLimit:      20,
		RateBurst:      40,
	}
}

// LoadSettings overlays the environment on DefaultSettings. Values that fail
// to parse are logged and the default is kept.
func LoadSettings(logger *logrus.Logger) Settings {
	s := DefaultSettings()
	env := envReader{log: logger}

	env.String("APP_PORT", &s.Port)
	env.String("APP_ENV", &s.Env)
	env.String("MODEL_PATH", &s.ModelPath)
	env.String("CASCADE_PATH", &s.CascadePath)
	env.String("CAMERA_DRIVER", &s.CameraDriver)
	env.String("CAMERA_DEVICE", &s.CameraDevice)
	env.Int("INFER_EVERY", &s.InferEvery)
	env.Int64("UPLOAD_MAX_BYTES", &s.UploadMaxBytes)
	env.Float("RATE_LIMIT_RPS", &s.RateLimit)
	env.Int("RATE_LIMIT_BURST", &s.RateBurst)

	intervalMS := int(s.FrameInterval / time.Millisecond)
	env.Int("FRAME_INTERVAL_MS", &intervalMS)
	s.FrameInterval = time.Duration(intervalMS) * time.Millisecond

	return s
}

type envReader struct {
	log *logrus.Logger
}

func (r envReader) invalid(name, value string, err error, fallback interface{}) {
	r.log.WithFields(log.Fields{
		"env":     name,
		"value":   value,
		"error":   err.Error(),
		"default": fallback,
	}).Warn("Ignoring invalid environment value")
}

func (r envReader) String(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func (r envReader) Int(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		r.invalid(name, v, err, *value)
		return
	}
	*value = i
}

func (r envReader) Int64(name string, value *int64) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.invalid(name, v, err, *value)
		return
	}
	*value = i
}

func (r envReader) Float(name string, value *float64) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.invalid(name, v, err, *value)
		return
	}
	*value = f
}
