package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/wallbox/relay/api/transport"
	"github.com/wallbox/relay/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	appName string
}

func NewHealthHandler(appName string, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		appName:     appName,
	}
}

// Check is the liveness probe.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	h.respondJSON(ctx, http.StatusOK, &transport.HealthResponse{
		Status:    "ok",
		Message:   h.appName + " is running",
		Timestamp: time.Now().UTC(),
	})
}
