package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gravitas-games/hexspiral/internal/network"
	"github.com/gravitas-games/hexspiral/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	id     string
	ws     *websocket.Conn
	server *Server
	client *models.Client
	log    zerolog.Logger

	// Buffered channel for outbound messages
	send chan []byte

	closeOnce sync.Once
}

// NewConnection creates a new connection
func NewConnection(ws *websocket.Conn, server *Server, client *models.Client) *Connection {
	id := uuid.NewString()
	client.ConnectionID = id
	client.ConnectedAt = time.Now()
	return &Connection{
		id:     id,
		ws:     ws,
		server: server,
		client: client,
		log:    log.With().Str("connection", id).Str("client", client.ID).Logger(),
		send:   make(chan []byte, 256),
	}
}

// handleWebSocket handles WebSocket connection requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r.Context())

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	conn := NewConnection(ws, s, client)
	s.session.Add(conn)
	conn.log.Info().Str("remote", r.RemoteAddr).Msg("WebSocket connection established")

	conn.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeWelcome,
		Payload: network.WelcomePayload{
			ConnectionID: conn.id,
			ClientID:     client.ID,
			MaxRing:      s.config.Limits.MaxRing,
		},
	})

	// Handle connection (blocking)
	conn.Handle()

	s.session.Remove(conn)
	conn.log.Info().Msg("WebSocket connection closed")
}

// Handle manages the connection lifecycle
func (c *Connection) Handle() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.writePump()
	c.readPump() // Blocking
}

// readPump pumps messages from the WebSocket connection to the server.
// Messages are handled in order on this goroutine, which is also the only
// sender on c.send.
func (c *Connection) readPump() {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}

		var clientMsg network.ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			c.SendError("", network.ErrCodeInvalidMessage, "failed to parse message")
			continue
		}

		c.handleMessage(&clientMsg)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Warn().Err(err).Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.server.ctx.Done():
			return
		}
	}
}

// handleMessage routes messages to appropriate handlers
func (c *Connection) handleMessage(msg *network.ClientMessage) {
	c.log.Debug().Str("type", msg.Type).Msg("received message")

	switch msg.Type {
	case network.MsgTypeToCube:
		var p network.ToCubePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.SendError(msg.ID, network.ErrCodeInvalidMessage, "invalid to_cube payload")
			return
		}
		cube, err := c.server.svc.SpiralToCube(c.server.ctx, p.Index)
		if err != nil {
			c.sendServiceError(msg.ID, err)
			return
		}
		c.reply(msg.ID, network.MsgTypeCube, network.CellPayload{Index: p.Index, Cube: cube})

	case network.MsgTypeToSpiral:
		var p network.ToSpiralPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.SendError(msg.ID, network.ErrCodeInvalidMessage, "invalid to_spiral payload")
			return
		}
		x, err := c.server.svc.CubeToSpiral(c.server.ctx, p.Cube)
		if err != nil {
			c.sendServiceError(msg.ID, err)
			return
		}
		c.reply(msg.ID, network.MsgTypeSpiral, network.CellPayload{Index: x, Cube: p.Cube})

	case network.MsgTypeRing:
		var p network.RingPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.SendError(msg.ID, network.ErrCodeInvalidMessage, "invalid ring payload")
			return
		}
		cells, err := c.server.svc.Ring(c.server.ctx, p.Ring)
		if err != nil {
			c.sendServiceError(msg.ID, err)
			return
		}
		c.reply(msg.ID, network.MsgTypeRingResult, network.RingResultPayload{Ring: p.Ring, Cells: cells})

	case network.MsgTypePing:
		c.reply(msg.ID, network.MsgTypePong, map[string]interface{}{"timestamp": time.Now().Unix()})

	default:
		c.SendError(msg.ID, network.ErrCodeUnknownType, "unknown message type "+msg.Type)
	}
}

func (c *Connection) reply(id, msgType string, payload interface{}) {
	c.SendMessage(&network.ServerMessage{ID: id, Type: msgType, Payload: payload})
}

func (c *Connection) sendServiceError(id string, err error) {
	_, code := classify(err)
	c.SendError(id, code, err.Error())
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *network.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to marshal message")
		return
	}

	select {
	case c.send <- data:
	default:
		c.log.Warn().Msg("send buffer full, dropping message")
	}
}

// SendError sends an error message to the client
func (c *Connection) SendError(id, code, message string) {
	c.SendMessage(&network.ServerMessage{
		ID:   id,
		Type: network.MsgTypeError,
		Payload: network.ErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}

// Close stops the write pump; it runs once, after the read pump exits
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// closeSocket forces both pumps to exit
func (c *Connection) closeSocket() {
	c.ws.Close()
}
