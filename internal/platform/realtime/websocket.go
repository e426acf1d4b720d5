package realtime

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // join codes are the access gate, not the origin
	},
}

// wsConnection guards writes with a mutex; gorilla permits one concurrent
// writer per connection.
type wsConnection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConnection) Send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// ServeWS upgrades the request, subscribes the viewer under the meeting, and
// blocks draining inbound frames until the peer disconnects. The read error
// is the disconnect signal that triggers Unsubscribe.
func ServeWS(hub *Hub, meetingID string, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := hub.Subscribe(meetingID, &wsConnection{conn: conn})
	defer func() {
		hub.Unsubscribe(meetingID, sub)
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
