package middleware

import (
	"github.com/valyala/fasthttp"
)

const (
	allowMethods  = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeaders  = "Content-Type, X-Client-Session-Id, Authorization, X-Odoo-Cookies, X-Odoo-Url"
	exposeHeaders = "X-Client-Session-Id"
)

// CORS tags every response with the relay's permissive cross-origin
// headers and short-circuits OPTIONS preflights before routing.
func CORS(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		h := &ctx.Response.Header
		h.Set(fasthttp.HeaderAccessControlAllowOrigin, "*")
		h.Set(fasthttp.HeaderAccessControlAllowMethods, allowMethods)
		h.Set(fasthttp.HeaderAccessControlAllowHeaders, allowHeaders)
		h.Set(fasthttp.HeaderAccessControlExposeHeaders, exposeHeaders)
		h.Set(fasthttp.HeaderAccessControlAllowCredentials, "true")

		if string(ctx.Method()) == fasthttp.MethodOptions {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}
		next(ctx)
	}
}
