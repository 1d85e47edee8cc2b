package emotionHandler

import (
	"image"
	"net"
	"sync"
	"testing"
	"time"

	"EmotionLens/internal/api/emotion"
	"EmotionLens/pkg/camera"
	websocketPkg "EmotionLens/pkg/websocket"

	"github.com/gofiber/fiber/v2"
)

type testCamera struct {
	mu     sync.Mutex
	reads  int
	closed bool
}

func (c *testCamera) Read() (image.Image, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return image.NewRGBA(image.Rect(0, 0, 640, 480)), nil
}

func (c *testCamera) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *testCamera) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *testCamera) opener() camera.Opener {
	return func() (camera.Camera, error) { return c, nil }
}

// serveLive binds app to a loopback port and returns the live websocket URL.
func serveLive(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(2 * time.Second) })
	return "ws://" + ln.Addr().String() + "/api/v1/live/ws"
}

func dialLive(t *testing.T, url string) websocketPkg.ILiveClient {
	t.Helper()
	client, err := websocketPkg.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func nextOfType(t *testing.T, client websocketPkg.ILiveClient, typ string) emotion.LiveMessage {
	t.Helper()
	for i := 0; i < 200; i++ {
		msg, err := client.Next()
		if err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		if msg.Type == typ {
			return msg
		}
	}
	t.Fatalf("no %q message within 200 messages", typ)
	return emotion.LiveMessage{}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLiveWebSocketStreamsAndStops(t *testing.T) {
	cam := &testCamera{}
	app, h := newTestAppWithCamera(t, oneFace, cam.opener())
	url := serveLive(t, app)
	h.liveService.Start()

	first := dialLive(t, url)
	defer first.Close()

	msg := nextOfType(t, first, emotion.MessageFrame)
	if msg.Prediction == nil || msg.Prediction.Label != "Happy" || msg.Image == "" {
		t.Fatalf("frame = %+v", msg.Prediction)
	}
	if len(msg.Faces) != 1 || msg.ResultHTML == "" {
		t.Fatalf("frame faces = %+v", msg.Faces)
	}

	second := dialLive(t, url)
	msg, err := second.Next()
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != emotion.MessageError || msg.Message != emotion.ErrCameraBusy.Error() {
		t.Fatalf("second client got %+v", msg)
	}
	if msg, err = second.Next(); err != nil || msg.Type != emotion.MessageStopped {
		t.Fatalf("second client want stopped, got %+v %v", msg, err)
	}
	_ = second.Close()

	if cam.isClosed() {
		t.Fatal("busy client must not release the streaming camera")
	}

	if err := first.Stop(); err != nil {
		t.Fatal(err)
	}
	nextOfType(t, first, emotion.MessageStopped)
	waitFor(t, "camera release", cam.isClosed)
	if h.liveService.Status().Active {
		t.Fatal("session still active after stop")
	}
}

func TestLiveWebSocketCameraUnavailable(t *testing.T) {
	app, h := newTestApp(t, oneFace)
	url := serveLive(t, app)
	h.liveService.Start()

	client := dialLive(t, url)
	defer client.Close()

	msg, err := client.Next()
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != emotion.MessageError || msg.Message != "Unable to access webcam. Check camera permissions." {
		t.Fatalf("got %+v", msg)
	}
	if msg, err = client.Next(); err != nil || msg.Type != emotion.MessageStopped {
		t.Fatalf("want stopped, got %+v %v", msg, err)
	}
	if h.liveService.Status().Active {
		t.Fatal("session should revert to inactive")
	}
}

func TestLiveWebSocketRequiresStart(t *testing.T) {
	cam := &testCamera{}
	app, _ := newTestAppWithCamera(t, oneFace, cam.opener())
	client := dialLive(t, serveLive(t, app))
	defer client.Close()

	msg, err := client.Next()
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != emotion.MessageError || msg.Message != emotion.ErrLiveInactive.Error() {
		t.Fatalf("got %+v", msg)
	}
	nextOfType(t, client, emotion.MessageStopped)

	cam.mu.Lock()
	defer cam.mu.Unlock()
	if cam.reads != 0 {
		t.Fatalf("camera read %d times without a session", cam.reads)
	}
}

func TestLiveWebSocketDisconnectCancelsLoop(t *testing.T) {
	cam := &testCamera{}
	app, h := newTestAppWithCamera(t, nil, cam.opener())
	url := serveLive(t, app)
	h.liveService.Start()

	client := dialLive(t, url)
	msg := nextOfType(t, client, emotion.MessageInfo)
	if msg.Message != emotion.AlignFaceMessage || msg.Image == "" {
		t.Fatalf("info = %+v", msg)
	}

	if err := client.Close(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "camera release", cam.isClosed)
	waitFor(t, "inactive session", func() bool { return !h.liveService.Status().Active })
}
