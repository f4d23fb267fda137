package handler

import (
	"context"          // context with cancellation for DB and portal calls
	"encoding/json"    // decoding the raw export payloads
	"io"               // draining inbound request bodies for logging
	"log"              // request/ingest logging
	"net/http"         // HTTP status codes
	"time"             // timeouts and timestamps

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/avetisyanh/portal-sync/internal/config"    // app configuration
	"github.com/avetisyanh/portal-sync/internal/model"     // record kinds and outcomes
	"github.com/avetisyanh/portal-sync/internal/portal"    // portal client + session
	"github.com/avetisyanh/portal-sync/internal/queue"     // broker event payloads
	"github.com/avetisyanh/portal-sync/internal/syncstate" // last-sync bookkeeping
)

// PortalClient is the outbound surface the handlers depend on.  The real
// implementation is *portal.Client; tests substitute a fake to assert call
// counts and payload shapes.
type PortalClient interface {
	Authenticate(ctx context.Context) (map[string]any, error)
	FetchFacilitySignups(ctx context.Context, s portal.Session) (json.RawMessage, error)
	FetchElearningCodes(ctx context.Context, s portal.Session) (json.RawMessage, error)
}

// Store interfaces are satisfied by the concrete repositories.  Each upsert
// is one all-or-nothing transaction returning the number of records written.
type signupStore interface {
	UpsertBatch(ctx context.Context, recs []model.Signup) (int, error)
}
type courseStore interface {
	UpsertBatch(ctx context.Context, recs []model.Course) (int, error)
}
type codeStore interface {
	UpsertBatch(ctx context.Context, recs []model.ElearningCode) (int, error)
}

// WebhookHandler bundles dependencies for the webhook endpoints.  Signups,
// Courses and Codes are nil when the database is not configured; the
// handlers treat that as missing configuration per invocation rather than
// refusing to start.  Publish is optional; when set it is called after each
// ingest and its error ignored.
type WebhookHandler struct {
	Cfg     config.Config
	Portal  PortalClient
	Signups signupStore
	Courses courseStore
	Codes   codeStore
	State   *syncstate.Store
	Publish func(ctx context.Context, ev queue.SyncCompletedEvent) error
}

// NewWebhookHandler wires the handler.  Any store may be nil when the
// database pool could not be constructed.
func NewWebhookHandler(cfg config.Config, pc PortalClient, s signupStore, c courseStore, e codeStore, st *syncstate.Store) *WebhookHandler {
	return &WebhookHandler{Cfg: cfg, Portal: pc, Signups: s, Courses: c, Codes: e, State: st}
}

// errResp is the envelope for hard failures (configuration missing, portal
// unreachable).  Soft persistence failures never use it; they ride inside
// the success envelope's database map instead.
func errResp(c echo.Context, msg string) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "error": msg})
}

// requireConfig checks the settings a resource webhook needs before any
// outbound call is attempted.  The error names the missing setting.
func (h *WebhookHandler) requireConfig() string {
	if h.Cfg.ExternalWebhookURL == "" {
		return "missing required setting: EXTERNAL_WEBHOOK_URL"
	}
	if h.Cfg.FacilityID == "" {
		return "missing required setting: FACILITY_ID"
	}
	if h.Signups == nil || h.Courses == nil || h.Codes == nil {
		return "missing required setting: database connection (DB_USER/DB_HOST/DB_NAME)"
	}
	return ""
}

// logBody drains and logs the inbound request body.  Webhook triggers are
// accepted with any body; nothing in it is required.
func logBody(c echo.Context, route string) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil || len(body) == 0 {
		log.Printf("%s: triggered with empty body", route)
		return
	}
	log.Printf("%s: triggered with body %s", route, body)
}

// SyncUsers only acknowledges receipt.  It is the lower-stakes "sync"
// trigger: no portal call, no persistence, just a timestamped echo so the
// upstream automation can confirm delivery.
func (h *WebhookHandler) SyncUsers(c echo.Context) error {
	logBody(c, "sync-users")
	return c.JSON(http.StatusOK, echo.Map{
		"status":      "success",
		"message":     "sync request received",
		"received_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetFacilitySignups runs the full pipeline for the signups export:
// validate config, authenticate, fetch with the derived session, upsert
// users then courses, respond with the raw payload plus per-kind outcomes.
func (h *WebhookHandler) GetFacilitySignups(c echo.Context) error {
	logBody(c, "get-facility-signups")
	if msg := h.requireConfig(); msg != "" {
		return errResp(c, msg)
	}

	ctx := c.Request().Context()
	authResp, err := h.Portal.Authenticate(ctx)
	if err != nil {
		return errResp(c, err.Error())
	}
	sess := portal.ExtractSession(authResp)

	raw, err := h.Portal.FetchFacilitySignups(ctx, sess)
	if err != nil {
		return errResp(c, err.Error())
	}

	results := map[string]model.UpsertOutcome{}
	var payload model.SignupsPayload
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Data != nil {
			n, err := h.upsertSignups(ctx, payload.Data)
			results["users"] = model.Outcome(n, err)
		}
		if len(payload.Courses) > 0 {
			n, err := h.upsertCourses(ctx, flattenCourses(payload.Courses))
			results["courses"] = model.Outcome(n, err)
		}
	}

	h.finishSync(ctx, "facility_signups", results)
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "success",
		"response": raw,
		"database": results,
	})
}

// GetElearningCodes runs the same pipeline for the e-learning-codes export.
func (h *WebhookHandler) GetElearningCodes(c echo.Context) error {
	logBody(c, "get-elearning-codes")
	if msg := h.requireConfig(); msg != "" {
		return errResp(c, msg)
	}

	ctx := c.Request().Context()
	authResp, err := h.Portal.Authenticate(ctx)
	if err != nil {
		return errResp(c, err.Error())
	}
	sess := portal.ExtractSession(authResp)

	raw, err := h.Portal.FetchElearningCodes(ctx, sess)
	if err != nil {
		return errResp(c, err.Error())
	}

	results := map[string]model.UpsertOutcome{}
	var payload model.ElearningPayload
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Data != nil {
			n, err := h.upsertCodes(ctx, payload.Data)
			results["elearning_codes"] = model.Outcome(n, err)
		}
	}

	h.finishSync(ctx, "elearning_codes", results)
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "success",
		"response": raw,
		"database": results,
	})
}

// SyncStatus reports the last recorded sync per resource kind from Redis.
// When bookkeeping is disabled (no Redis) the endpoint says so instead of
// failing.
func (h *WebhookHandler) SyncStatus(c echo.Context) error {
	if !h.State.Enabled() {
		return c.JSON(http.StatusOK, echo.Map{"enabled": false})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out := echo.Map{"enabled": true}
	for _, resource := range []string{"facility_signups", "elearning_codes"} {
		snap, err := h.State.Last(ctx, resource)
		if err != nil {
			out[resource] = echo.Map{"error": err.Error()}
			continue
		}
		out[resource] = snap // nil renders as JSON null: never synced
	}
	return c.JSON(http.StatusOK, out)
}

// upsertSignups / upsertCourses / upsertCodes bound each transaction with
// the configured DB timeout, independent of how long the portal calls took.
func (h *WebhookHandler) upsertSignups(ctx context.Context, recs []model.Signup) (int, error) {
	ctx, cancel := h.dbCtx(ctx)
	defer cancel()
	return h.Signups.UpsertBatch(ctx, recs)
}

func (h *WebhookHandler) upsertCourses(ctx context.Context, recs []model.Course) (int, error) {
	ctx, cancel := h.dbCtx(ctx)
	defer cancel()
	return h.Courses.UpsertBatch(ctx, recs)
}

func (h *WebhookHandler) upsertCodes(ctx context.Context, recs []model.ElearningCode) (int, error) {
	ctx, cancel := h.dbCtx(ctx)
	defer cancel()
	return h.Codes.UpsertBatch(ctx, recs)
}

func (h *WebhookHandler) dbCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(h.Cfg.DBTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// finishSync records the outcome in Redis and publishes the completion
// event.  Both are best-effort; failures are logged and never affect the
// HTTP response.
func (h *WebhookHandler) finishSync(ctx context.Context, resource string, results map[string]model.UpsertOutcome) {
	if err := h.State.Record(ctx, resource, results); err != nil {
		log.Printf("syncstate: record %s failed: %v", resource, err)
	}
	if h.Publish == nil {
		return
	}
	_ = h.Publish(ctx, queue.SyncCompletedEvent{
		FacilityID:  h.Cfg.FacilityID,
		Resource:    resource,
		Results:     results,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// flattenCourses collapses the agency-grouped payload into one slice.  The
// outer agency key is informational; each course already carries its agency
// as a field.
func flattenCourses(grouped map[string][]model.Course) []model.Course {
	var out []model.Course
	for _, list := range grouped {
		out = append(out, list...)
	}
	return out
}
