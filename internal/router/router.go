package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/wallbox/relay/api/handler"
)

type Handlers struct {
	Proxy     *apiHandler.ProxyHandler
	Auth      *apiHandler.AuthHandler
	Call      *apiHandler.CallHandler
	Dashboard *apiHandler.DashboardHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Session-holding generic forward
	r.ANY("/api/proxy", handlers.Proxy.Forward)
	r.DELETE("/api/proxy/session", handlers.Proxy.Logout)

	// Stateless Odoo bridge
	r.POST("/api/odoo/auth", handlers.Auth.Authenticate)
	r.POST("/api/odoo/call", handlers.Call.Call)
	r.GET("/api/odoo/dashboard", handlers.Dashboard.Stats)

	return r
}
