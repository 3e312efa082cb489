package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallbox/relay/api/transport"
	"github.com/wallbox/relay/internal/odoo"
	odooUC "github.com/wallbox/relay/usecase/odoo"
)

func newAuthHandler(defaultURL, defaultDB string) *AuthHandler {
	client := odoo.NewClient(2*time.Second, nil)
	return NewAuthHandler(odooUC.New(client, nil), nil, nil, defaultURL, defaultDB)
}

func TestAuthenticate_MissingFields(t *testing.T) {
	h := newAuthHandler("", "")
	ctx := doRequest(h.Authenticate, http.MethodPost, "http://relay/api/odoo/auth",
		nil, []byte(`{"url":"http://odoo.example","username":"admin"}`))

	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	var envelope transport.ErrorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	assert.Equal(t, "Missing required fields", envelope.Error)
	assert.Equal(t, []string{"url", "database", "username", "password"}, envelope.Required)
}

func TestAuthenticate_InvalidBody(t *testing.T) {
	h := newAuthHandler("", "")
	ctx := doRequest(h.Authenticate, http.MethodPost, "http://relay/api/odoo/auth",
		nil, []byte(`{not json`))

	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestAuthenticate_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Add("Set-Cookie", "session_id=abc123; Path=/; HttpOnly")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":{"uid":2,"username":"admin","db":"wallbox","session_id":"sid-1","server_version":"17.0"}}`))
	}))
	defer upstream.Close()

	h := newAuthHandler("", "")
	ctx := doRequest(h.Authenticate, http.MethodPost, "http://relay/api/odoo/auth", nil,
		[]byte(`{"url":"`+upstream.URL+`","database":"wallbox","username":"admin","password":"secret"}`))

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	var resp transport.AuthResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.UID)
	assert.Equal(t, "admin", resp.Username)
	assert.Equal(t, "wallbox", resp.Database)
	assert.Equal(t, upstream.URL, resp.BaseURL)
	assert.Equal(t, map[string]string{"session_id": "abc123"}, resp.Cookies)
	assert.Equal(t, "17.0", resp.ServerVersion)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":100,"message":"Odoo Server Error","data":{"message":"Invalid credentials"}}}`))
	}))
	defer upstream.Close()

	h := newAuthHandler("", "")
	ctx := doRequest(h.Authenticate, http.MethodPost, "http://relay/api/odoo/auth", nil,
		[]byte(`{"url":"`+upstream.URL+`","database":"wallbox","username":"admin","password":"wrong"}`))

	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	var envelope transport.ErrorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	assert.Equal(t, "Authentication failed", envelope.Error)
	assert.Equal(t, "Invalid credentials", envelope.Message)
}

func TestAuthenticate_UnreachableHost(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	dead := upstream.URL
	upstream.Close()

	h := newAuthHandler("", "")
	ctx := doRequest(h.Authenticate, http.MethodPost, "http://relay/api/odoo/auth", nil,
		[]byte(`{"url":"`+dead+`","database":"wallbox","username":"admin","password":"secret"}`))

	assert.Equal(t, http.StatusServiceUnavailable, ctx.Response.StatusCode())
	var envelope transport.ErrorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	assert.Equal(t, "Cannot connect to Odoo server", envelope.Error)
	assert.Contains(t, envelope.Message, "Connection refused")
}

func TestAuthenticate_DefaultUpstreamFallback(t *testing.T) {
	var gotDB string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Params struct {
				DB string `json:"db"`
			} `json:"params"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		gotDB = payload.Params.DB
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":{"uid":2,"username":"admin","db":"wallbox"}}`))
	}))
	defer upstream.Close()

	h := newAuthHandler(upstream.URL, "wallbox")
	ctx := doRequest(h.Authenticate, http.MethodPost, "http://relay/api/odoo/auth", nil,
		[]byte(`{"username":"admin","password":"secret"}`))

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "wallbox", gotDB)
}
