package emotionHandler

import (
	"EmotionLens/internal/api/emotion"
	emotionService "EmotionLens/internal/api/emotion/service"
	"EmotionLens/pkg/handlerUtil"
	"EmotionLens/pkg/vision"
	"EmotionLens/web"
	"bytes"
	"encoding/base64"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

const writeTimeout = 10 * time.Second

func (h *EmotionHandler) LiveStatus(ctx *fiber.Ctx) error {
	return handlerUtil.New(h.log).HandleSuccess(ctx, fiber.StatusOK, emotion.NewLiveStatusResponse(h.liveService.Status()))
}

func (h *EmotionHandler) StartLive(ctx *fiber.Ctx) error {
	h.liveService.Start()
	return handlerUtil.New(h.log).HandleSuccess(ctx, fiber.StatusOK, emotion.NewLiveStatusResponse(h.liveService.Status()))
}

func (h *EmotionHandler) StopLive(ctx *fiber.Ctx) error {
	h.liveService.Stop()
	return handlerUtil.New(h.log).HandleSuccess(ctx, fiber.StatusOK, emotion.NewLiveStatusResponse(h.liveService.Status()))
}

// liveMessage turns one loop iteration into the message pushed to the browser.
func (h *EmotionHandler) liveMessage(frame emotion.LiveFrame) (emotion.LiveMessage, error) {
	jpg, err := vision.EncodeJPEG(frame.Image)
	if err != nil {
		return emotion.LiveMessage{}, err
	}

	msg := emotion.LiveMessage{
		Type:  emotion.MessageFrame,
		Image: base64.StdEncoding.EncodeToString(jpg),
		Faces: frame.Faces,
	}

	if frame.Prediction == nil {
		msg.Type = emotion.MessageInfo
		msg.Message = emotion.AlignFaceMessage
		return msg, nil
	}

	prediction := emotion.NewPredictionResponse(*frame.Prediction)
	var result bytes.Buffer
	if err := h.renderer.Result(&result, web.ResultData{Prediction: prediction}); err != nil {
		return emotion.LiveMessage{}, err
	}
	msg.Prediction = &prediction
	msg.ResultHTML = result.String()
	return msg, nil
}

func (h *EmotionHandler) writeJSON(c *websocket.Conn, v interface{}) error {
	if err := c.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if err := c.WriteJSON(v); err != nil {
		return err
	}
	return c.SetWriteDeadline(time.Time{})
}

func (h *EmotionHandler) handleLiveWebSocket(c *websocket.Conn) {
	h.log.Info("Live detection WebSocket client connected")
	defer h.log.Info("Live detection WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		h.log.Debug("Received ping, sending pong")
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The reader only handles control messages; all writes happen on this goroutine.
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		for {
			var ctl emotion.LiveControl
			if err := c.ReadJSON(&ctl); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Warnf("Live WebSocket read error: %v", err)
				}
				return
			}
			if err := h.validator.Struct(ctl); err != nil {
				h.log.Warnf("Ignoring live control message: %v", err)
				continue
			}
			if ctl.Action == emotion.ActionStop {
				h.liveService.Stop()
			}
		}
	}()
	// The connection goes back to a pool once this handler returns.
	defer func() {
		_ = c.SetReadDeadline(time.Now())
		<-done
	}()

	err := h.liveService.Run(ctx, emotionService.FrameSinkFunc(func(frame emotion.LiveFrame) error {
		msg, err := h.liveMessage(frame)
		if err != nil {
			h.log.Warnf("Dropping live frame %d: %v", frame.Index, err)
			return nil
		}
		return h.writeJSON(c, msg)
	}))
	if err != nil {
		h.log.Warnf("Live detection ended: %v", err)
		if writeErr := h.writeJSON(c, emotion.LiveMessage{Type: emotion.MessageError, Message: handlerUtil.Message(err)}); writeErr != nil {
			return
		}
	}

	_ = h.writeJSON(c, emotion.LiveMessage{Type: emotion.MessageStopped})
}
