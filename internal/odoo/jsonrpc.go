package odoo

import (
	"encoding/json"
	"strings"
)

// rpcRequest is the wire format of an Odoo JSON-RPC call.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// rpcResponse keeps error and result raw so the error payload can be
// attached verbatim to the caller's envelope for diagnostics.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Error   json.RawMessage `json:"error,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// errorMessage digs the human-readable message out of a JSON-RPC error
// payload, preferring the nested data.message over the top-level one.
func errorMessage(payload json.RawMessage) string {
	var parsed struct {
		Message string `json:"message"`
		Data    struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return ""
	}
	if parsed.Data.Message != "" {
		return parsed.Data.Message
	}
	return parsed.Message
}

// IsSessionExpired classifies an upstream error message as session expiry.
// Odoo exposes no structured signal for this, so the relay matches the
// wording; a non-matching error still surfaces as an upstream error rather
// than silent success.
func IsSessionExpired(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "session") && strings.Contains(m, "expired")
}
