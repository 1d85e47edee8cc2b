package handlerUtil

import (
	"EmotionLens/internal/api/emotion"
	"EmotionLens/pkg/log"
	"EmotionLens/pkg/response"
	"EmotionLens/pkg/utils"
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberUtils "github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Translate maps lower-level errors onto the emotion domain errors.
func Translate(err error) error {
	switch {
	case errors.Is(err, utils.ErrNoFile):
		return emotion.ErrMissingImage
	case errors.Is(err, utils.ErrFileTooLarge):
		return emotion.ErrFileTooLarge
	case errors.Is(err, utils.ErrNotAnImage):
		return emotion.ErrInvalidFileType
	}
	return err
}

// Message returns the text a client should see for err.
func Message(err error) string {
	if respErr, ok := response.As(Translate(err)); ok {
		return respErr.Error()
	}
	return "An unexpected error occurred"
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	err = Translate(err)

	if respErr, ok := response.As(err); ok {
		fields := log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}
		if respErr.Code >= fiber.StatusInternalServerError {
			h.logger.WithFields(fields).Error("Operation failed with error response")
		} else {
			h.logger.WithFields(fields).Warn("Operation failed with error response")
		}
		return c.Status(respErr.Code).JSON(ErrorResponse{Error: respErr.Error()})
	}

	traceID := log.ErrorWithTraceID(h.logger, log.Fields{
		log.RequestIDKey: requestID,
		"error":          err.Error(),
		"path":           path,
		"operation":      operation,
	}, "Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "An unexpected error occurred",
		TraceID: traceID,
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(fiberUtils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
