// Command watch starts live detection on a running server and prints every
// prediction it streams until interrupted.
package main

import (
	"EmotionLens/internal/api/emotion"
	"EmotionLens/pkg/log"
	websocketPkg "EmotionLens/pkg/websocket"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	addr := flag.String("addr", "localhost:3000", "server host:port")
	every := flag.Int("every", 1, "print one line per N frames")
	flag.Parse()

	logger := log.NewLogger()

	base := url.URL{Scheme: "http", Host: *addr, Path: "/api/v1/live"}
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Post(base.String()+"/start", "application/json", nil)
	if err != nil {
		logger.Fatalf("Failed to start live detection: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Fatalf("Failed to start live detection: %s", resp.Status)
	}

	ws := base
	ws.Scheme = "ws"
	ws.Path += "/ws"
	live, err := websocketPkg.Dial(ws.String(), nil)
	if err != nil {
		logger.Fatal(err)
	}
	defer live.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Stopping live detection...")
		if err := live.Stop(); err != nil {
			logger.Warnf("Failed to send stop: %v", err)
			os.Exit(1)
		}
	}()

	frames := 0
	for {
		msg, err := live.Next()
		if err != nil {
			logger.Warnf("Live stream closed: %v", err)
			return
		}

		switch msg.Type {
		case emotion.MessageFrame:
			frames++
			if *every > 1 && frames%*every != 0 {
				continue
			}
			if msg.Prediction == nil {
				fmt.Printf("frame %5d  faces=%d  %s\n", frames, len(msg.Faces), msg.Message)
				continue
			}
			fmt.Printf("frame %5d  faces=%d  %s %s  %s\n",
				frames, len(msg.Faces), msg.Prediction.Emoji, msg.Prediction.Label, msg.Prediction.ConfidenceText)
		case emotion.MessageError:
			logger.Errorf("Server reported: %s", msg.Message)
		case emotion.MessageStopped:
			logger.Info("Live detection stopped")
			return
		}
	}
}
