package websocketPkg

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"EmotionLens/internal/api/emotion"

	"github.com/gorilla/websocket"
)

// echoServer answers every control message with a frame message naming the action.
func echoServer(t *testing.T) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			var ctl emotion.LiveControl
			if err := conn.ReadJSON(&ctl); err != nil {
				return
			}
			msg := emotion.LiveMessage{Type: emotion.MessageInfo, Message: ctl.Action}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}))
}

func TestLiveClientRoundTrip(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	client, err := Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	if err := client.Stop(); err != nil {
		t.Fatal(err)
	}
	msg, err := client.Next()
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != emotion.MessageInfo || msg.Message != emotion.ActionStop {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestDialFailure(t *testing.T) {
	if _, err := Dial("ws://127.0.0.1:1/none", nil); err == nil {
		t.Fatal("expected dial error")
	}
}
