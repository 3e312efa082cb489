package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/wallbox/relay/api/transport"
	"github.com/wallbox/relay/pkg/httpcontext"
	relayUC "github.com/wallbox/relay/usecase/relay"
)

type ProxyHandler struct {
	baseHandler
	uc *relayUC.UseCase
}

func NewProxyHandler(uc *relayUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProxyHandler {
	return &ProxyHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// Forward relays any method to the target named in the url query parameter.
// Upstream cookies stay server-side; the browser only ever sees its opaque
// session id, echoed in the X-Client-Session-Id response header.
func (h *ProxyHandler) Forward(ctx *fasthttp.RequestCtx) {
	targetURL := string(ctx.QueryArgs().Peek("url"))
	if targetURL == "" {
		h.respondJSON(ctx, http.StatusBadRequest, &transport.ErrorResponse{
			Error: "Missing URL parameter",
		})
		return
	}

	method := string(ctx.Method())
	in := relayUC.ForwardInput{
		Method:        method,
		TargetURL:     targetURL,
		SessionID:     string(ctx.Request.Header.Peek(transport.HeaderClientSessionID)),
		Authorization: string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)),
	}
	switch method {
	case fasthttp.MethodPost, fasthttp.MethodPut, fasthttp.MethodPatch:
		in.Body = ctx.PostBody()
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.uc.Forward(stdCtx, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Response.Header.Set(transport.HeaderClientSessionID, out.SessionID)
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(out.StatusCode)
	ctx.SetBody(out.Body)
}

// Logout deletes the relay-side session record immediately.
func (h *ProxyHandler) Logout(ctx *fasthttp.RequestCtx) {
	sessionID := string(ctx.Request.Header.Peek(transport.HeaderClientSessionID))
	if sessionID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, &transport.ErrorResponse{
			Error: "Missing session header",
		})
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, sessionID); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}
