package opencv

import (
	"image"
	"strconv"

	"EmotionLens/pkg/camera"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

type videoCamera struct {
	vc    *gocv.VideoCapture
	frame gocv.Mat
}

// OpenCamera opens a capture device by index ("0") or by path/URL.
func OpenCamera(device string) (camera.Camera, error) {
	var id interface{} = device
	if n, err := strconv.Atoi(device); err == nil {
		id = n
	}

	vc, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, errors.Wrapf(camera.ErrUnavailable, "error opening video capture device %v: %v", device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, errors.Wrapf(camera.ErrUnavailable, "video capture device %v is not opened", device)
	}

	return &videoCamera{vc: vc, frame: gocv.NewMat()}, nil
}

func (c *videoCamera) Read() (image.Image, error) {
	if ok := c.vc.Read(&c.frame); !ok || c.frame.Empty() {
		return nil, camera.ErrReadFailed
	}
	img, err := c.frame.ToImage()
	if err != nil {
		return nil, errors.Wrap(camera.ErrReadFailed, err.Error())
	}
	return img, nil
}

func (c *videoCamera) Close() error {
	c.frame.Close()
	return c.vc.Close()
}
