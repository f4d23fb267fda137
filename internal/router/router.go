package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/avetisyanh/portal-sync/internal/handler" // import the handlers that implement the webhook logic
)

// RegisterRoutes registers routes that carry no dependencies on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterWebhooks registers the webhook triggers and the sync-status
// endpoint.  All three triggers are POST: the upstream automation platform
// delivers every event as a POST with an arbitrary body.  None of them
// require authentication; verifying webhook signatures is out of scope for
// this bridge.
func RegisterWebhooks(e *echo.Echo, h *handler.WebhookHandler) {
	// Group the triggers under the /webhook prefix the upstream platform is
	// configured with.
	g := e.Group("/webhook")
	// Acknowledge-only trigger; does no real work.
	g.POST("/sync-users", h.SyncUsers)
	// Full pipeline: auth -> fetch signups export -> upsert users and courses.
	g.POST("/get-facility-signups", h.GetFacilitySignups)
	// Full pipeline for the e-learning codes export.
	g.POST("/get-elearning-codes", h.GetElearningCodes)

	// Operator-facing view of the last recorded sync per resource kind.
	e.GET("/v1/sync/status", h.SyncStatus)
}
