package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func run(method string) (*fasthttp.RequestCtx, bool) {
	called := false
	handler := CORS(func(*fasthttp.RequestCtx) { called = true })

	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI("http://relay/api/proxy")

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	handler(ctx)
	return ctx, called
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	ctx, called := run(http.MethodOptions)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())
	assert.Equal(t, "*", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.Contains(t, string(ctx.Response.Header.Peek("Access-Control-Allow-Headers")), "X-Client-Session-Id")
	assert.Contains(t, string(ctx.Response.Header.Peek("Access-Control-Allow-Headers")), "X-Odoo-Cookies")
	assert.Contains(t, string(ctx.Response.Header.Peek("Access-Control-Allow-Headers")), "X-Odoo-Url")
	assert.Equal(t, "X-Client-Session-Id", string(ctx.Response.Header.Peek("Access-Control-Expose-Headers")))
}

func TestCORS_PassesThroughOtherMethods(t *testing.T) {
	ctx, called := run(http.MethodGet)

	assert.True(t, called)
	assert.Equal(t, "*", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
}
