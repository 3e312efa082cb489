package transport

// AuthRequest is the login payload. All four fields are required unless a
// default upstream is configured server-side.
type AuthRequest struct {
	URL      string `json:"url"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ModelCallRequest is one call_kw invocation.
type ModelCallRequest struct {
	Model  string                 `json:"model"`
	Method string                 `json:"method"`
	Args   []interface{}          `json:"args"`
	Kwargs map[string]interface{} `json:"kwargs"`
}
