package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/wallbox/relay/api/transport"
	"github.com/wallbox/relay/domain"
	"github.com/wallbox/relay/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, envelope := mapError(err)
	h.respondJSON(ctx, status, envelope)
}

// mapError converts an error into the relay's HTTP error envelope. Errors
// never propagate past the handler boundary.
func mapError(err error) (int, *transport.ErrorResponse) {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		status := http.StatusInternalServerError
		switch dErr.Code {
		case domain.ErrCodeInvalid, domain.ErrCodeUpstream:
			status = http.StatusBadRequest
		case domain.ErrCodeUnauthorized:
			status = http.StatusUnauthorized
		case domain.ErrCodeUnavailable:
			status = http.StatusServiceUnavailable
		case domain.ErrCodeTimeout:
			status = http.StatusGatewayTimeout
		}
		return status, &transport.ErrorResponse{
			Error:   dErr.Summary,
			Message: dErr.Message,
			Details: dErr.Details,
		}
	}
	return http.StatusInternalServerError, &transport.ErrorResponse{
		Error:   "Internal server error",
		Message: err.Error(),
	}
}
