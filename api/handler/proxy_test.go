package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/wallbox/relay/api/transport"
	"github.com/wallbox/relay/internal/odoo"
	"github.com/wallbox/relay/repository/memory"
	relayUC "github.com/wallbox/relay/usecase/relay"
)

func newProxyHandler() *ProxyHandler {
	store := memory.NewSessionStore(30 * time.Minute)
	client := odoo.NewClient(2*time.Second, nil)
	return NewProxyHandler(relayUC.New(store, client, nil), nil, nil)
}

func doRequest(handler fasthttp.RequestHandler, method, uri string, headers map[string]string, body []byte) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	if body != nil {
		req.SetBody(body)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	handler(ctx)
	return ctx
}

func TestForward_MissingURL(t *testing.T) {
	h := newProxyHandler()

	ctx := doRequest(h.Forward, http.MethodGet, "http://relay/api/proxy", nil, nil)

	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	var envelope transport.ErrorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	assert.Equal(t, "Missing URL parameter", envelope.Error)
}

func TestForward_SessionCookieRoundTrip(t *testing.T) {
	var gotCookies []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookies = append(gotCookies, r.Header.Get("Cookie"))
		if len(gotCookies) == 1 {
			w.Header().Add("Set-Cookie", "session_id=abc123; Path=/")
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":{}}`))
	}))
	defer upstream.Close()

	h := newProxyHandler()
	target := url.QueryEscape(upstream.URL + "/web/session/get_session_info")

	// First request: no session header, upstream sets a cookie.
	ctx := doRequest(h.Forward, http.MethodGet, "http://relay/api/proxy?url="+target, nil, nil)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	sessionID := string(ctx.Response.Header.Peek(transport.HeaderClientSessionID))
	require.NotEmpty(t, sessionID)
	assert.Empty(t, gotCookies[0], "fresh session has no cookies to replay")

	// Second request: same session id, stored cookie is replayed upstream.
	ctx = doRequest(h.Forward, http.MethodGet, "http://relay/api/proxy?url="+target,
		map[string]string{transport.HeaderClientSessionID: sessionID}, nil)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	assert.Equal(t, sessionID, string(ctx.Response.Header.Peek(transport.HeaderClientSessionID)))
	require.Len(t, gotCookies, 2)
	assert.Equal(t, "session_id=abc123", gotCookies[1])
}

func TestForward_UpstreamErrorPassesThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"odoo says no"}`))
	}))
	defer upstream.Close()

	h := newProxyHandler()
	ctx := doRequest(h.Forward, http.MethodGet,
		"http://relay/api/proxy?url="+url.QueryEscape(upstream.URL), nil, nil)

	assert.Equal(t, http.StatusForbidden, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"error":"odoo says no"}`, string(ctx.Response.Body()))
}

func TestForward_BodyForwardedForPost(t *testing.T) {
	var gotBody []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	h := newProxyHandler()
	doRequest(h.Forward, http.MethodPost,
		"http://relay/api/proxy?url="+url.QueryEscape(upstream.URL),
		nil, []byte(`{"jsonrpc":"2.0","method":"call"}`))

	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"call"}`, string(gotBody))
}

func TestForward_TransportFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	dead := upstream.URL
	upstream.Close()

	h := newProxyHandler()
	ctx := doRequest(h.Forward, http.MethodGet,
		"http://relay/api/proxy?url="+url.QueryEscape(dead), nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
	var envelope transport.ErrorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	assert.Equal(t, "Cannot connect to Odoo server", envelope.Error)
	assert.NotEmpty(t, envelope.Message)
}

func TestLogout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Add("Set-Cookie", "session_id=abc123; Path=/")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	h := newProxyHandler()
	target := url.QueryEscape(upstream.URL)

	ctx := doRequest(h.Forward, http.MethodGet, "http://relay/api/proxy?url="+target, nil, nil)
	sessionID := string(ctx.Response.Header.Peek(transport.HeaderClientSessionID))
	require.NotEmpty(t, sessionID)

	ctx = doRequest(h.Logout, http.MethodDelete, "http://relay/api/proxy/session",
		map[string]string{transport.HeaderClientSessionID: sessionID}, nil)
	assert.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())

	// The deleted id is not reachable again: a forward mints a fresh session.
	ctx = doRequest(h.Forward, http.MethodGet, "http://relay/api/proxy?url="+target,
		map[string]string{transport.HeaderClientSessionID: sessionID}, nil)
	assert.NotEqual(t, sessionID, string(ctx.Response.Header.Peek(transport.HeaderClientSessionID)))
}

func TestLogout_MissingHeader(t *testing.T) {
	h := newProxyHandler()
	ctx := doRequest(h.Logout, http.MethodDelete, "http://relay/api/proxy/session", nil, nil)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}
