package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const sendBuffer = 256

// clientConn is one live websocket. Outbound frames go through send and are
// written by writePump only, so enqueue never touches the socket.
type clientConn struct {
	id      string
	rawConn *websocket.Conn
	send    chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newClientConn(id string, rawConn *websocket.Conn) *clientConn {
	return &clientConn{
		id:      id,
		rawConn: rawConn,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
}

// enqueue never blocks; it reports false when the connection is closed or its
// buffer is full.
func (c *clientConn) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close is idempotent. It only signals writePump, which sends the close frame
// and shuts the socket; that in turn makes the reader return and run the
// disconnect handling.
func (c *clientConn) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *clientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		_ = c.rawConn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.rawConn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zap.L().Debug("ws.write", zap.String("conn", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.rawConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				zap.L().Debug("ws.ping", zap.String("conn", c.id), zap.Error(err))
				return
			}
		case <-c.done:
			_ = c.rawConn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.rawConn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
