package websocketPkg

import (
	"EmotionLens/internal/api/emotion"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

// ILiveClient consumes the live detection stream of a running server.
type ILiveClient interface {
	Stop() error
	Next() (emotion.LiveMessage, error)
	Close() error
}

type liveClient struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// Dial connects to a live stream endpoint such as ws://localhost:3000/api/v1/live/ws.
func Dial(url string, header http.Header) (ILiveClient, error) {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	return &liveClient{
		conn:         conn,
		readTimeout:  60 * time.Second,
		writeTimeout: 5 * time.Second,
	}, nil
}

func (c *liveClient) send(action string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(emotion.LiveControl{Action: action})
}

func (c *liveClient) Stop() error {
	return c.send(emotion.ActionStop)
}

func (c *liveClient) Next() (emotion.LiveMessage, error) {
	var msg emotion.LiveMessage
	if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
		return msg, err
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return msg, err
	}
	if err := jsoniter.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("decode live message: %w", err)
	}
	return msg, nil
}

func (c *liveClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(c.writeTimeout))
	return c.conn.Close()
}
