package config

import (
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// multipart framing on top of the largest accepted upload
const bodyOverhead = 64 * 1024

func NewFiber(logger *logrus.Logger, settings Settings) *fiber.App {
	logger.Debugf("Upload limit %d bytes", settings.UploadMaxBytes)

	app := fiber.New(
		fiber.Config{
			AppName:           "EmotionLens",
			BodyLimit:         int(settings.UploadMaxBytes) + bodyOverhead,
			DisableKeepalive:  false,
			StrictRouting:     true,
			CaseSensitive:     true,
			EnablePrintRoutes: settings.Env != "production",
			JSONEncoder:       jsoniter.Marshal,
			JSONDecoder:       jsoniter.Unmarshal,
		})

	return app
}
