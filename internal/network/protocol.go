package network

import (
	"encoding/json"

	"github.com/gravitas-015/hexcore/hex"

	"github.com/gravitas-games/hexspiral/internal/spiral"
)

// Message types - Client → Server
const (
	MsgTypeToCube   = "to_cube"
	MsgTypeToSpiral = "to_spiral"
	MsgTypeRing     = "ring"
	MsgTypePing     = "ping"
)

// Message types - Server → Client
const (
	MsgTypeWelcome    = "welcome"
	MsgTypeCube       = "cube"
	MsgTypeSpiral     = "spiral"
	MsgTypeRingResult = "ring"
	MsgTypeError      = "error"
	MsgTypePong       = "pong"
)

// Error codes
const (
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeUnknownType    = "unknown_message_type"
	ErrCodeMalformedCube  = "malformed_cube"
	ErrCodeNotFound       = "not_found"
	ErrCodeOutOfRange     = "out_of_range"
	ErrCodeBatchTooLarge  = "batch_too_large"
	ErrCodeInternal       = "internal"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	ID      string          `json:"id,omitempty"` // echoed in the reply
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	ID      string      `json:"id,omitempty"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// ToCubePayload asks for the cube coordinate of a spiral index
type ToCubePayload struct {
	Index uint64 `json:"index"`
}

// ToSpiralPayload asks for the spiral index of a cube coordinate
type ToSpiralPayload struct {
	Cube hex.Cube `json:"cube"`
}

// RingPayload asks for every cell on a ring
type RingPayload struct {
	Ring uint64 `json:"ring"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after successful connection
type WelcomePayload struct {
	ConnectionID string `json:"connection_id"`
	ClientID     string `json:"client_id"`
	MaxRing      uint64 `json:"max_ring"`
}

// CellPayload carries one conversion result
type CellPayload = spiral.Cell

// RingResultPayload carries the cells of a ring
type RingResultPayload struct {
	Ring  uint64        `json:"ring"`
	Cells []spiral.Cell `json:"cells"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
