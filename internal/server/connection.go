package server

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	sendBuffer = 256
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection is one websocket client. Every client drives the same session.
type Connection struct {
	id        uuid.UUID
	conn      *websocket.Conn
	send      chan *Message
	server    *Server
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func newConnection(conn *websocket.Conn, server *Server) *Connection {
	ctx, cancel := context.WithCancel(server.ctx)
	id := uuid.New()
	return &Connection{
		id:     id,
		conn:   conn,
		send:   make(chan *Message, sendBuffer),
		server: server,
		logger: server.logger.WithPrefix("conn").With("id", id.String()[:8]),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID identifies the connection in logs.
func (c *Connection) ID() uuid.UUID {
	return c.id
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues msg without blocking. A client that cannot keep up
// is disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConnectionClosed
	}
	select {
	case c.send <- msg:
		c.mu.RUnlock()
		return nil
	default:
		c.mu.RUnlock()
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.server.unregister(c)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var req Request
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleRequest(req)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleRequest(req Request) {
	line := strings.TrimSpace(req.Command)
	c.logger.Debug("Received command", "command", line)

	sess := c.server.Session()
	if sess == nil {
		c.sendError(req.RequestID, "service_unavailable", "no session attached")
		return
	}
	if line == "" {
		c.sendError(req.RequestID, "invalid_message", "command required")
		return
	}

	out, err := sess.Execute(c.ctx, line)
	if err != nil {
		c.sendError(req.RequestID, ErrorCode(err), err.Error())
		return
	}
	_ = c.SendMessage(&Message{
		Type:      MessageTypeResult,
		RequestID: req.RequestID,
		Output:    out,
		Game:      string(sess.Current()),
		Balance:   sess.Balance(),
		Timestamp: time.Now(),
	})
}

func (c *Connection) sendError(requestID, code, message string) {
	var balance int
	if sess := c.server.Session(); sess != nil {
		balance = sess.Balance()
	}
	_ = c.SendMessage(&Message{
		Type:      MessageTypeError,
		RequestID: requestID,
		Code:      code,
		Error:     message,
		Balance:   balance,
		Timestamp: time.Now(),
	})
}
