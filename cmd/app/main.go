package main

import (
	"EmotionLens/internal/config"
	"EmotionLens/pkg/log"
	"EmotionLens/pkg/opencv"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded, using process environment: %v", err)
	}

	settings := config.LoadSettings(logger)
	fiberApp := config.NewFiber(logger, settings)
	validator := config.NewValidator()

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithSettings(settings),
		config.WithMiddleware(),
		config.WithUtils(),
		config.WithRenderer(),
		config.WithBackends(config.Backends{
			Network:     opencv.OpenNetwork,
			Locator:     opencv.NewCascadeLocator,
			CascadePath: opencv.ResolveCascadePath,
			Camera:      opencv.OpenCamera,
		}),
		config.WithModel(),
		config.WithFaceLocator(),
		config.WithCamera(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	fiberApp.Hooks().OnListen(func(fiber.ListenData) error {
		if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
			logger.Warnf("systemd notify failed: %v", err)
		} else if ok {
			logger.Debug("Notified systemd that the server is ready")
		}
		return nil
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		logger.Warnf("systemd notify failed: %v", err)
	}
	if err := server.Shutdown(10 * time.Second); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
