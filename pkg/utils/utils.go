package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"image"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"EmotionLens/pkg/vision"

	"github.com/oklog/ulid/v2"
)

const DefaultMaxFileSize = 10 * 1024 * 1024

var (
	ErrNoFile       = errors.New("no file uploaded")
	ErrFileTooLarge = errors.New("file size exceeds limit")
	ErrNotAnImage   = errors.New("uploaded file is not a jpg, jpeg or png image")
)

var allowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	DecodeImageFile(file *multipart.FileHeader) (image.Image, error)
	MaxFileSize() int64
}

type utils struct {
	maxFileSize int64
}

func New(maxFileSize int64) IUtils {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &utils{
		maxFileSize: maxFileSize,
	}
}

func (u *utils) MaxFileSize() int64 {
	return u.maxFileSize
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// FileExtension returns the lower-cased extension of name without the dot.
func FileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxFileSize {
		return ErrFileTooLarge
	}

	if _, ok := allowedExtensions[FileExtension(file.Filename)]; !ok {
		return ErrNotAnImage
	}

	return nil
}

// DecodeImageFile decodes an uploaded jpg or png into a 3-channel image.
func (u *utils) DecodeImageFile(file *multipart.FileHeader) (image.Image, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	img, err := vision.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}
