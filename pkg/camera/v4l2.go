package camera

import (
	"bytes"
	"image"
	"image/jpeg"
	"strings"

	"github.com/blackjack/webcam"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	mjpegFourCC      webcam.PixelFormat = 0x47504A4D // 'MJPG'
	preferredWidth                      = 640
	preferredHeight                     = 480
	frameWaitSeconds                    = 1
)

// frameSource is the part of *webcam.Webcam the reader needs.
type frameSource interface {
	WaitForFrame(timeout uint32) error
	ReadFrame() ([]byte, error)
	StopStreaming() error
	Close() error
}

type v4l2Camera struct {
	cam    frameSource
	device string
	log    *logrus.Logger
}

// OpenV4L2 streams MJPEG frames from a V4L2 device such as /dev/video0.
func OpenV4L2(device string, logger *logrus.Logger) (Camera, error) {
	cam, err := webcam.Open(device)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "can not open device %s: %v", device, err)
	}

	format, ok := findMJPEG(cam.GetSupportedFormats())
	if !ok {
		cam.Close()
		return nil, errors.Wrapf(ErrUnavailable, "device %s has no MJPEG format", device)
	}

	w, h := pickFrameSize(cam.GetSupportedFrameSizes(format))
	if _, _, _, err := cam.SetImageFormat(format, w, h); err != nil {
		cam.Close()
		return nil, errors.Wrapf(ErrUnavailable, "can not set image format on %s: %v", device, err)
	}

	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, errors.Wrapf(ErrUnavailable, "can not start streaming on %s: %v", device, err)
	}

	return &v4l2Camera{cam: cam, device: device, log: logger}, nil
}

func (c *v4l2Camera) Read() (image.Image, error) {
	for {
		err := c.cam.WaitForFrame(frameWaitSeconds)
		switch err.(type) {
		case nil:
		case *webcam.Timeout:
			c.log.WithFields(logrus.Fields{
				"device": c.device,
				"error":  err.Error(),
			}).Warn("Timed out waiting for camera frame")
			continue
		default:
			return nil, errors.Wrapf(ErrReadFailed, "failed when waiting for frame: %v", err)
		}

		frame, err := c.cam.ReadFrame()
		if err != nil {
			return nil, errors.Wrapf(ErrReadFailed, "can not read frame: %v", err)
		}
		if len(frame) == 0 {
			continue
		}

		img, err := jpeg.Decode(bytes.NewReader(frame))
		if err != nil {
			return nil, errors.Wrapf(ErrReadFailed, "can not decode frame: %v", err)
		}
		return img, nil
	}
}

func (c *v4l2Camera) Close() error {
	_ = c.cam.StopStreaming()
	return c.cam.Close()
}

func findMJPEG(formats map[webcam.PixelFormat]string) (webcam.PixelFormat, bool) {
	if _, ok := formats[mjpegFourCC]; ok {
		return mjpegFourCC, true
	}
	for f, desc := range formats {
		if strings.Contains(strings.ToLower(desc), "jpeg") {
			return f, true
		}
	}
	return 0, false
}

// pickFrameSize prefers 640x480 when the device supports it, else the first listed size.
func pickFrameSize(sizes []webcam.FrameSize) (uint32, uint32) {
	if len(sizes) == 0 {
		return preferredWidth, preferredHeight
	}
	for _, s := range sizes {
		if fits(preferredWidth, s.MinWidth, s.MaxWidth, s.StepWidth) &&
			fits(preferredHeight, s.MinHeight, s.MaxHeight, s.StepHeight) {
			return preferredWidth, preferredHeight
		}
	}
	return sizes[0].MaxWidth, sizes[0].MaxHeight
}

func fits(v, lo, hi, step uint32) bool {
	if v < lo || v > hi {
		return false
	}
	if step == 0 {
		return v == lo
	}
	return (v-lo)%step == 0
}
