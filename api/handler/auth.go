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

var authRequiredFields = []string{"url", "database", "username", "password"}

type AuthHandler struct {
	baseHandler
	uc *odooUC.UseCase

	// Single-tenant fallback for url/database; per-call values always win.
	defaultURL      string
	defaultDatabase string
}

func NewAuthHandler(uc *odooUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger, defaultURL, defaultDatabase string) *AuthHandler {
	return &AuthHandler{
		baseHandler:     newBaseHandler(adapter, logger),
		uc:              uc,
		defaultURL:      defaultURL,
		defaultDatabase: defaultDatabase,
	}
}

// Authenticate logs in against the upstream and returns the session
// cookies to the browser.
func (h *AuthHandler) Authenticate(ctx *fasthttp.RequestCtx) {
	var req transport.AuthRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, &transport.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	if req.URL == "" {
		req.URL = h.defaultURL
	}
	if req.Database == "" {
		req.Database = h.defaultDatabase
	}
	if req.URL == "" || req.Database == "" || req.Username == "" || req.Password == "" {
		h.respondJSON(ctx, http.StatusBadRequest, &transport.ErrorResponse{
			Error:    "Missing required fields",
			Required: authRequiredFields,
		})
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Authenticate(stdCtx, odooUC.AuthInput{
		URL:      req.URL,
		Database: req.Database,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondJSON(ctx, http.StatusOK, &transport.AuthResponse{
		Success:           true,
		SessionID:         result.SessionID,
		UID:               result.UID,
		Username:          result.Username,
		Database:          result.Database,
		BaseURL:           result.BaseURL,
		Cookies:           result.Cookies,
		ServerVersion:     result.ServerVersion,
		ServerVersionInfo: result.ServerVersionInfo,
	})
}
