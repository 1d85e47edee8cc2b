package camera

import (
	"image"
	"strconv"

	"github.com/pkg/errors"
)

const (
	DriverOpenCV = "opencv"
	DriverV4L2   = "v4l2"
)

var (
	ErrUnavailable = errors.New("camera unavailable")
	ErrReadFailed  = errors.New("camera read failed")
)

// Camera is owned by a single reader; implementations are not safe for concurrent use.
type Camera interface {
	Read() (image.Image, error)
	Close() error
}

// Opener acquires the configured device. Each call yields a fresh handle.
type Opener func() (Camera, error)

// DevicePath maps a bare index such as "0" to /dev/video0; paths pass through.
func DevicePath(device string) string {
	if _, err := strconv.Atoi(device); err == nil {
		return "/dev/video" + device
	}
	return device
}
