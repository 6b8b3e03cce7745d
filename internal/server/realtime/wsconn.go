package realtime

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

var (
	errConnClosed     = errors.New("connection closed")
	errSendBufferFull = errors.New("send buffer full")
)

// wsConn adapts a gorilla connection to Conn. All writes go through the send
// buffer and are performed by writePump, the only writer of the socket.
type wsConn struct {
	conn      *websocket.Conn
	userID    string
	familyID  string
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	logger    logging.Logger
}

func newWSConn(conn *websocket.Conn, userID, familyID string, logger logging.Logger) *wsConn {
	return &wsConn{
		conn:     conn,
		userID:   userID,
		familyID: familyID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Send queues payload without blocking. A full buffer counts as a failed
// delivery so one slow reader cannot stall a broadcast.
func (c *wsConn) Send(payload []byte) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *wsConn) UserID() string   { return c.userID }
func (c *wsConn) FamilyID() string { return c.familyID }

// Close stops the write pump, which then closes the socket.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.logger.Debug(context.Background(), "write failed", "error", err)
				_ = c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.logger.Debug(context.Background(), "ping failed", "error", err)
				_ = c.Close()
				return
			}
		case <-c.done:
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *wsConn) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// readLoop consumes inbound frames until the peer goes away. An application
// "ping" is answered with "pong"; anything else is ignored.
func (c *wsConn) readLoop(ctx context.Context, maxFrameSize int64) {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info(ctx, "connection dropped", "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if string(bytes.TrimSpace(data)) == common.PingFrame {
			if err := c.Send([]byte(common.PongFrame)); err != nil {
				c.logger.Debug(ctx, "pong not queued", "error", err)
			}
		}
	}
}
