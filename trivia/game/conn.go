package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jaredblack/trivia-wizard-2/trivia/game/message"
	"github.com/jaredblack/trivia-wizard-2/wlog"
)

var connLogger = wlog.NewPrefixLogger("websocket")

const (
	// pingInterval is how often the write loop pings the client.
	pingInterval = 5 * time.Second

	// pongWait is how long a connection may go without a pong before its
	// reads fail and it is considered dead.
	pongWait = 10 * time.Second

	// writeWait is the deadline applied to every outgoing frame.
	writeWait = 10 * time.Second

	// outboxSize is the high-water mark on a connection's outbox. A client
	// that falls this far behind is dropped rather than allowed to queue
	// unbounded memory.
	outboxSize = 256
)

// Conn wraps a websocket connection with an outbox channel drained by a
// dedicated write loop. Handlers and timer tasks enqueue without blocking;
// only the write loop touches the socket for writes.
type Conn struct {
	// ID identifies the connection in logs and in the watcher registry.
	ID string

	wsConn *websocket.Conn

	send chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

// NewConn wraps an upgraded websocket connection.
func NewConn(wsConn *websocket.Conn) *Conn {
	return &Conn{
		ID:     uuid.NewString(),
		wsConn: wsConn,
		send:   make(chan []byte, outboxSize),
		closed: make(chan struct{}),
	}
}

// StartWriteLoop drains the outbox onto the socket and pings the client on
// the heartbeat interval. It blocks until the connection is closed, so it
// should be run on its own goroutine.
func (c *Conn) StartWriteLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	// The socket is closed here, once the loop has stopped, so that frames
	// queued before Close still reach the client.
	defer func() {
		if err := c.wsConn.Close(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				connLogger.Debug("error while closing websocket %s: %s", c.ID, err)
			}
		}
	}()

	for {
		select {
		case msg := <-c.send:
			c.wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.wsConn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			c.wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.closed:
			// Flush whatever is already queued before tearing down.
			for {
				select {
				case msg := <-c.send:
					c.wsConn.SetWriteDeadline(time.Now().Add(writeWait))
					if c.wsConn.WriteMessage(websocket.TextMessage, msg) != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// Send encodes a server message and enqueues it on the outbox.
func (c *Conn) Send(msg *message.ServerMessage) {
	c.SendBytes(message.MustEncodeBytes(msg))
}

// SendBytes enqueues pre-encoded bytes on the outbox. A connection whose
// outbox is full is dropped.
func (c *Conn) SendBytes(data []byte) {
	select {
	case c.send <- data:
	case <-c.closed:
	default:
		connLogger.Warn("send buffer full for connection %s, dropping connection", c.ID)
		c.Close()
	}
}

// ReadText blocks until the next text frame arrives. Pongs refresh the read
// deadline; a client that goes silent past the pong window errors out here.
func (c *Conn) ReadText() (string, error) {
	for {
		messageType, data, err := c.wsConn.ReadMessage()
		if err != nil {
			return "", err
		}
		if messageType == websocket.TextMessage {
			return string(data), nil
		}
	}
}

// Close tears the connection down: the write loop flushes what is already
// queued and then closes the socket. Safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

func (c *Conn) setupHeartbeat() {
	c.wsConn.SetReadDeadline(time.Now().Add(pongWait))
	c.wsConn.SetPongHandler(func(string) error {
		c.wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
}
