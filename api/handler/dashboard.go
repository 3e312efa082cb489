package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/wallbox/relay/pkg/httpcontext"
	odooUC "github.com/wallbox/relay/usecase/odoo"
)

type DashboardHandler struct {
	baseHandler
	uc *odooUC.UseCase
}

func NewDashboardHandler(uc *odooUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// Stats serves the precomputed dashboard counters. Uses the same stateless
// auth headers as the model-call endpoint.
func (h *DashboardHandler) Stats(ctx *fasthttp.RequestCtx) {
	jar, baseURL, ok := h.odooSession(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.DashboardStats(stdCtx, baseURL, jar)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondJSON(ctx, http.StatusOK, stats)
}
