package emotion

import (
	"EmotionLens/pkg/response"
	"net/http"
)

var (
	ErrBadRequest      = response.NewError(http.StatusBadRequest, "request body must be multipart/form-data")
	ErrMissingImage    = response.NewError(http.StatusBadRequest, "image file is required")
	ErrInvalidFileType = response.NewError(http.StatusBadRequest, "invalid file type, only jpg, jpeg and png are allowed")
	ErrFileTooLarge    = response.NewError(http.StatusRequestEntityTooLarge, "file too large")
	ErrInvalidImage    = response.NewError(http.StatusBadRequest, "uploaded file could not be decoded as an image")
	ErrNoFaceDetected  = response.NewError(http.StatusUnprocessableEntity, "No face detected. Try another image with a clear frontal face.")
	ErrInferenceFailed = response.NewError(http.StatusInternalServerError, "emotion inference failed")

	ErrCameraUnavailable = response.NewError(http.StatusServiceUnavailable, "Unable to access webcam. Check camera permissions.")
	ErrCameraRead        = response.NewError(http.StatusServiceUnavailable, "Failed to read from webcam.")
	ErrCameraBusy        = response.NewError(http.StatusConflict, "webcam is already streaming to another client")
	ErrLiveInactive      = response.NewError(http.StatusConflict, "live detection is not running, start it first")
)
