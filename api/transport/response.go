package transport

import (
	"encoding/json"
	"time"
)

// ErrorResponse is the envelope every relay error is returned in. Callers
// branch on the HTTP status first, then inspect Message for display.
type ErrorResponse struct {
	Error    string      `json:"error"`
	Message  string      `json:"message,omitempty"`
	Details  interface{} `json:"details,omitempty"`
	Required []string    `json:"required,omitempty"`
}

// AuthResponse is returned on successful authentication. The browser keeps
// the cookie map and re-presents it via the X-Odoo-Cookies header.
type AuthResponse struct {
	Success           bool              `json:"success"`
	SessionID         string            `json:"sessionId"`
	UID               int               `json:"uid"`
	Username          string            `json:"username"`
	Database          string            `json:"database"`
	BaseURL           string            `json:"baseUrl"`
	Cookies           map[string]string `json:"cookies"`
	ServerVersion     string            `json:"serverVersion,omitempty"`
	ServerVersionInfo []interface{}     `json:"serverVersionInfo,omitempty"`
}

// CallResponse wraps a successful model-call result.
type CallResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
