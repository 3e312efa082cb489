package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/wallbox/relay/api/transport"
	"github.com/wallbox/relay/pkg/httpcontext"
	odooUC "github.com/wallbox/relay/usecase/odoo"
)

type CallHandler struct {
	baseHandler
	uc *odooUC.UseCase
}

func NewCallHandler(uc *odooUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CallHandler {
	return &CallHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// Call bridges one call_kw invocation. This path is stateless from the
// relay's perspective: the browser supplies the cookie jar and base URL on
// every request.
func (h *CallHandler) Call(ctx *fasthttp.RequestCtx) {
	var req transport.ModelCallRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, &transport.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	if req.Model == "" || req.Method == "" {
		h.respondJSON(ctx, http.StatusBadRequest, &transport.ErrorResponse{
			Error:    "Missing required fields",
			Required: []string{"model", "method"},
		})
		return
	}

	jar, baseURL, ok := h.odooSession(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Call(stdCtx, odooUC.CallInput{
		BaseURL: baseURL,
		Cookies: jar,
		Model:   req.Model,
		Method:  req.Method,
		Args:    req.Args,
		Kwargs:  req.Kwargs,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondJSON(ctx, http.StatusOK, &transport.CallResponse{
		Success: true,
		Result:  result,
	})
}

// odooSession reads and validates the X-Odoo-Cookies / X-Odoo-Url headers,
// responding with the appropriate error when they are absent or malformed.
func (h baseHandler) odooSession(ctx *fasthttp.RequestCtx) (map[string]string, string, bool) {
	cookiesHeader := string(ctx.Request.Header.Peek(transport.HeaderOdooCookies))
	baseURL := string(ctx.Request.Header.Peek(transport.HeaderOdooURL))

	if cookiesHeader == "" || baseURL == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, &transport.ErrorResponse{
			Error:   "Not authenticated",
			Message: "X-Odoo-Cookies and X-Odoo-Url headers required. Please authenticate first.",
		})
		return nil, "", false
	}

	var jar map[string]string
	if err := json.Unmarshal([]byte(cookiesHeader), &jar); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, &transport.ErrorResponse{
			Error:   "Invalid cookies format",
			Message: "X-Odoo-Cookies must be a valid JSON object",
		})
		return nil, "", false
	}

	return jar, baseURL, true
}
