package config

import (
	emotionHandler "EmotionLens/internal/api/emotion/handler"
	emotionService "EmotionLens/internal/api/emotion/service"
	"EmotionLens/internal/middleware"
	"EmotionLens/pkg/camera"
	"EmotionLens/pkg/classifier"
	"EmotionLens/pkg/model"
	"EmotionLens/pkg/utils"
	"EmotionLens/pkg/vision"
	"EmotionLens/web"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const apiBase = "/api/v1"

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	settings    Settings
	loader      model.ILoader
	network     model.Network
	locator     vision.FaceLocator
	openCamera  camera.Opener
	renderer    *web.Renderer
	backends    Backends
	handlers    []handler
	pageHandler pageHandler
}

// Backends are the native implementations behind the model, the face locator
// and the default camera driver.
type Backends struct {
	Network     model.Backend
	Locator     func(path string) (vision.FaceLocator, error)
	CascadePath func(override string) string
	Camera      func(device string) (camera.Camera, error)
}

type handler interface {
	Start(srv fiber.Router)
}

type pageHandler interface {
	StartPage(app fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{settings: DefaultSettings()}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.network == nil {
		return nil, fmt.Errorf("model is required")
	}
	if server.locator == nil {
		return nil, fmt.Errorf("face locator is required")
	}
	if server.renderer == nil {
		renderer, err := web.NewRenderer()
		if err != nil {
			return nil, err
		}
		server.renderer = renderer
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithSettings(settings Settings) ServerOption {
	return func(s *Server) error {
		if s.validator == nil {
			return fmt.Errorf("validator must be initialized before settings")
		}
		if err := s.validator.Struct(settings); err != nil {
			return fmt.Errorf("invalid settings: %w", err)
		}
		s.settings = settings
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, middleware.Config{
			RatePerSecond: s.settings.RateLimit,
			Burst:         s.settings.RateBurst,
		})
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New(s.settings.UploadMaxBytes)
		return nil
	}
}

func WithBackends(b Backends) ServerOption {
	return func(s *Server) error {
		if b.Network == nil || b.Locator == nil || b.Camera == nil {
			return fmt.Errorf("network, locator and camera backends are required")
		}
		if b.CascadePath == nil {
			b.CascadePath = func(override string) string { return override }
		}
		s.backends = b
		return nil
	}
}

func WithRenderer() ServerOption {
	return func(s *Server) error {
		renderer, err := web.NewRenderer()
		if err != nil {
			return err
		}
		s.renderer = renderer
		return nil
	}
}

// ModelCandidates lists the probe order for the model file relative to the
// working directory and the executable.
func ModelCandidates() []string {
	exeDir := "."
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	return model.Candidates(exeDir)
}

// WithModel loads the emotion network once; a failure aborts startup.
func WithModel() ServerOption {
	return func(s *Server) error {
		if s.backends.Network == nil {
			return fmt.Errorf("backends must be set before the model")
		}
		path := s.settings.ModelPath
		if path == "" {
			path = model.ResolvePath(ModelCandidates(), nil)
		}

		loader := model.NewLoader(s.backends.Network)
		network, err := loader.Load(path)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Error loading model: %v", err)
				s.log.Infof("Tried model path: %s", path)
			}
			var loadErr *model.LoadError
			if errors.As(err, &loadErr) {
				return fmt.Errorf("failed to load model from %s: %w", loadErr.Path, err)
			}
			return fmt.Errorf("failed to load model: %w", err)
		}

		if s.log != nil {
			s.log.Infof("Loaded emotion model from %s", path)
		}
		s.loader = loader
		s.network = network
		return nil
	}
}

func WithFaceLocator() ServerOption {
	return func(s *Server) error {
		if s.backends.Locator == nil {
			return fmt.Errorf("backends must be set before the face locator")
		}
		path := s.backends.CascadePath(s.settings.CascadePath)
		locator, err := s.backends.Locator(path)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to load face cascade %s: %v", path, err)
			}
			return fmt.Errorf("failed to create face locator: %w", err)
		}
		s.locator = locator
		return nil
	}
}

// WithCamera picks the capture backend from CAMERA_DRIVER. The device is only
// opened when a live loop starts.
func WithCamera() ServerOption {
	return func(s *Server) error {
		device := s.settings.CameraDevice
		switch s.settings.CameraDriver {
		case camera.DriverV4L2:
			path := camera.DevicePath(device)
			logger := s.log
			s.openCamera = func() (camera.Camera, error) { return camera.OpenV4L2(path, logger) }
		case camera.DriverOpenCV, "":
			if s.backends.Camera == nil {
				return fmt.Errorf("backends must be set before the camera")
			}
			open := s.backends.Camera
			s.openCamera = func() (camera.Camera, error) { return open(device) }
		default:
			return fmt.Errorf("unknown camera driver %q", s.settings.CameraDriver)
		}
		return nil
	}
}

func (s *Server) RegisterHandler() {
	if s.validator == nil {
		s.validator = NewValidator()
	}
	if s.utils == nil {
		s.utils = utils.New(s.settings.UploadMaxBytes)
	}
	if s.middleware == nil {
		s.middleware = middleware.New(s.log, middleware.Config{})
	}
	if s.openCamera == nil {
		s.openCamera = func() (camera.Camera, error) { return nil, camera.ErrUnavailable }
	}

	// Emotion Domain
	cls := classifier.New(s.network)
	emotionServices := emotionService.NewEmotionService(s.log, s.locator, cls)
	liveServices := emotionService.NewLiveService(s.log, s.openCamera, s.locator, cls, emotionService.LiveConfig{
		InferEvery:    s.settings.InferEvery,
		FrameInterval: s.settings.FrameInterval,
	})
	emotionHandlers := emotionHandler.New(s.log, s.validator, s.middleware, emotionServices, liveServices, s.utils, s.renderer, apiBase)

	s.pageHandler = emotionHandlers
	s.handlers = append(s.handlers, emotionHandlers)
}

// Mount attaches middleware and routes. Run calls it before listening.
func (s *Server) Mount() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())

	s.setupHealthCheck()

	if s.pageHandler != nil {
		s.pageHandler.StartPage(s.engine)
	}

	router := s.engine.Group(apiBase)
	for _, h := range s.handlers {
		h.Start(router)
	}
}

func (s *Server) Run() error {
	s.Mount()
	return s.engine.Listen(fmt.Sprintf(":%s", s.settings.Port))
}

// Shutdown stops accepting requests, then releases the model and cascade.
func (s *Server) Shutdown(timeout time.Duration) error {
	err := s.engine.ShutdownWithTimeout(timeout)

	if s.locator != nil {
		if cerr := s.locator.Close(); cerr != nil {
			s.log.Warnf("Error closing face locator: %v", cerr)
		}
	}
	if s.loader != nil {
		if cerr := s.loader.Close(); cerr != nil {
			s.log.Warnf("Error closing model: %v", cerr)
		}
	}
	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
