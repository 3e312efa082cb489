// Package odoo is the relay's upstream edge: a JSON-RPC client for the
// Odoo web API plus the generic request forwarder. It translates transport
// failures and application-level RPC errors into the relay's error taxonomy.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/wallbox/relay/domain"
	"github.com/wallbox/relay/pkg/cookies"
)

// Client issues outbound calls to an Odoo instance with a bounded timeout.
type Client struct {
	http    *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a Client whose outbound calls are bounded by timeout.
func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			Name:         "wallbox-relay",
		},
		timeout: timeout,
		logger:  logger,
	}
}

// AuthResult carries everything the browser needs to re-present the
// upstream session on subsequent calls.
type AuthResult struct {
	SessionID         string
	UID               int
	Username          string
	Database          string
	BaseURL           string
	Cookies           map[string]string
	ServerVersion     string
	ServerVersionInfo []interface{}
}

// Authenticate performs the JSON-RPC login call and extracts the session
// cookies from the response. A JSON-RPC error or a missing user id is an
// authentication failure, distinct from transport-level failures.
func (c *Client) Authenticate(ctx context.Context, baseURL, database, username, password string) (*AuthResult, error) {
	base := strings.TrimRight(baseURL, "/")

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(base + "/web/session/authenticate")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params: map[string]interface{}{
			"db":       database,
			"login":    username,
			"password": password,
		},
	})
	if err != nil {
		return nil, err
	}
	req.SetBody(body)

	c.logger.Debug("authenticating against odoo",
		zap.String("base_url", base),
		zap.String("database", database),
		zap.String("login", username))

	if err := c.do(ctx, req, resp); err != nil {
		return nil, err
	}

	var envelope rpcResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "Internal server error",
			"unexpected response from Odoo", err)
	}

	if len(envelope.Error) > 0 {
		msg := errorMessage(envelope.Error)
		if msg == "" {
			msg = "Invalid credentials"
		}
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "Authentication failed", msg).
			WithDetails(envelope.Error)
	}

	var result struct {
		UID               int           `json:"uid"`
		Username          string        `json:"username"`
		DB                string        `json:"db"`
		SessionID         string        `json:"session_id"`
		ServerVersion     string        `json:"server_version"`
		ServerVersionInfo []interface{} `json:"server_version_info"`
	}
	// Odoo encodes uid as false on failed logins; the unmarshal error is
	// deliberately ignored so that case falls through to the uid check.
	_ = json.Unmarshal(envelope.Result, &result)
	if result.UID == 0 {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "Authentication failed",
			"No user ID returned from Odoo")
	}

	auth := &AuthResult{
		SessionID:         result.SessionID,
		UID:               result.UID,
		Username:          result.Username,
		Database:          result.DB,
		BaseURL:           base,
		Cookies:           cookies.Parse(setCookieHeaders(resp)),
		ServerVersion:     result.ServerVersion,
		ServerVersionInfo: result.ServerVersionInfo,
	}
	if auth.Username == "" {
		auth.Username = username
	}
	if auth.Database == "" {
		auth.Database = database
	}
	return auth, nil
}

// CallKw issues one web/dataset/call_kw request replaying the supplied
// cookie jar. Session-expired upstream errors map to an unauthorized
// domain error so the caller can trigger re-authentication; every other
// RPC error maps to an upstream error with the payload attached.
func (c *Client) CallKw(ctx context.Context, baseURL string, jar map[string]string, model, method string, args []interface{}, kwargs map[string]interface{}) (json.RawMessage, error) {
	if args == nil {
		args = []interface{}{}
	}
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(strings.TrimRight(baseURL, "/") + "/web/dataset/call_kw")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if len(jar) > 0 {
		req.Header.Set(fasthttp.HeaderCookie, cookies.Serialize(jar))
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params: map[string]interface{}{
			"model":  model,
			"method": method,
			"args":   args,
			"kwargs": kwargs,
		},
	})
	if err != nil {
		return nil, err
	}
	req.SetBody(body)

	c.logger.Debug("odoo model call", zap.String("model", model), zap.String("method", method))

	if err := c.do(ctx, req, resp); err != nil {
		return nil, err
	}

	var envelope rpcResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "Internal server error",
			"unexpected response from Odoo", err)
	}

	if len(envelope.Error) > 0 {
		msg := errorMessage(envelope.Error)
		if IsSessionExpired(msg) {
			return nil, domain.NewError(domain.ErrCodeUnauthorized, "Session expired",
				"Please authenticate again").WithDetails(envelope.Error)
		}
		if msg == "" {
			msg = "Odoo API error"
		}
		return nil, domain.NewError(domain.ErrCodeUpstream, "Odoo API error", msg).
			WithDetails(envelope.Error)
	}

	return envelope.Result, nil
}

// ForwardResult is the upstream response of a generic forward: status and
// body pass through unchanged, Set-Cookie values are captured for the
// session store.
type ForwardResult struct {
	StatusCode int
	Body       []byte
	SetCookies []string
}

// Forward executes one outbound request to targetURL. Upstream HTTP errors
// are not errors here: the caller forwards status and body as-is. Only
// transport-level failures return an error.
func (c *Client) Forward(ctx context.Context, method, targetURL string, body []byte, jar map[string]string, authorization string) (*ForwardResult, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(targetURL)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if len(jar) > 0 {
		req.Header.Set(fasthttp.HeaderCookie, cookies.Serialize(jar))
	}
	if authorization != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, authorization)
	}
	if methodCarriesBody(method) && len(body) > 0 {
		req.SetBody(body)
	}

	c.logger.Debug("forwarding request", zap.String("method", method), zap.String("url", targetURL))

	if err := c.do(ctx, req, resp); err != nil {
		return nil, err
	}

	return &ForwardResult{
		StatusCode: resp.StatusCode(),
		Body:       append([]byte(nil), resp.Body()...),
		SetCookies: setCookieHeaders(resp),
	}, nil
}

// do executes the request within the client timeout, tightened further by
// any context deadline, and classifies transport failures.
func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return classifyTransport(err)
	}
	return nil
}

func classifyTransport(err error) error {
	switch {
	case errors.Is(err, fasthttp.ErrTimeout),
		errors.Is(err, fasthttp.ErrDialTimeout),
		errors.Is(err, context.DeadlineExceeded),
		os.IsTimeout(err):
		return domain.WrapError(domain.ErrCodeTimeout, "Connection timeout",
			"Odoo server did not respond in time", err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return domain.WrapError(domain.ErrCodeUnavailable, "Cannot connect to Odoo server",
			"Connection refused. Check if the Odoo URL is correct and accessible.", err)
	default:
		return domain.WrapError(domain.ErrCodeInternal, "Proxy error", err.Error(), err)
	}
}

func methodCarriesBody(method string) bool {
	switch method {
	case fasthttp.MethodPost, fasthttp.MethodPut, fasthttp.MethodPatch:
		return true
	}
	return false
}

func setCookieHeaders(resp *fasthttp.Response) []string {
	var values []string
	resp.Header.VisitAll(func(key, value []byte) {
		if bytes.EqualFold(key, []byte(fasthttp.HeaderSetCookie)) {
			values = append(values, string(value))
		}
	})
	return values
}
