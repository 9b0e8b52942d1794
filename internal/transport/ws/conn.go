package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pingEvery  = 15 * time.Second
	readLimit  = 1 << 20
	sendBuffer = 256
)

// wsConn wraps one gorilla connection with a buffered outbound queue and a
// single writer goroutine, so fan-out never writes to the socket directly.
type wsConn struct {
	id   string
	conn *websocket.Conn

	out       chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newWSConn(c *websocket.Conn) *wsConn {
	return &wsConn{
		id:     uuid.NewString(),
		conn:   c,
		out:    make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

// Send enqueues a payload without blocking. A closed connection or a full
// queue drops the payload for this peer only.
func (c *wsConn) Send(payload []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.out <- payload:
		return true
	default:
		return false
	}
}

// Close is idempotent and safe from any goroutine.
func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

// writeLoop owns the socket's write side: queued payloads with a per-write
// deadline, periodic pings. A write failure tears the connection down.
func (c *wsConn) writeLoop() {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case payload := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		case <-c.closed:
			return
		}
	}
}
