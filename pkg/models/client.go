package models

import "time"

// Client represents an API caller
type Client struct {
	// From JWT claims
	ID          string `json:"id"`          // JWT subject
	Name        string `json:"name"`        // JWT claim
	Permissions int64  `json:"permissions"` // JWT claim: bitwise permission flags

	// Connection state
	ConnectionID string    `json:"connection_id,omitempty"`
	ConnectedAt  time.Time `json:"connected_at"`
}

// Anonymous is used for every caller when authentication is disabled.
func Anonymous() *Client {
	return &Client{ID: "anonymous", Name: "anonymous"}
}

// IsAnonymous reports whether the client was not authenticated.
func (c *Client) IsAnonymous() bool {
	return c.ID == "anonymous"
}
