package server

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gravitas-games/hexspiral/internal/service"
)

// Session tracks the live WebSocket connections of a server
type Session struct {
	CreatedAt time.Time

	svc         *service.Service
	connections map[string]*Connection // connectionID -> Connection
	mu          sync.RWMutex
}

// SessionStatus represents the current state of the server
type SessionStatus struct {
	Connections       int       `json:"connections"`
	ConversionsServed int64     `json:"conversions_served"`
	StartedAt         time.Time `json:"started_at"`
	Uptime            int64     `json:"uptime"` // seconds
}

// NewSession creates an empty session
func NewSession(svc *service.Service) *Session {
	return &Session{
		CreatedAt:   time.Now(),
		svc:         svc,
		connections: make(map[string]*Connection),
	}
}

// Add registers a connection
func (s *Session) Add(conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connections[conn.id] = conn
	log.Debug().Str("connection", conn.id).Str("client", conn.client.ID).Int("connections", len(s.connections)).Msg("connection registered")
}

// Remove unregisters a connection
func (s *Session) Remove(conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.connections[conn.id]; exists {
		delete(s.connections, conn.id)
		log.Debug().Str("connection", conn.id).Int("connections", len(s.connections)).Msg("connection removed")
	}
}

// Count returns the number of live connections
func (s *Session) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// CloseAll closes every live connection's socket
func (s *Session) CloseAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, conn := range s.connections {
		conn.closeSocket()
	}
}

// Status returns the current session status
func (s *Session) Status() SessionStatus {
	return SessionStatus{
		Connections:       s.Count(),
		ConversionsServed: s.svc.Served(),
		StartedAt:         s.CreatedAt,
		Uptime:            int64(time.Since(s.CreatedAt).Seconds()),
	}
}
