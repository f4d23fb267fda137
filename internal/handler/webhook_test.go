package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetisyanh/portal-sync/internal/config"
	"github.com/avetisyanh/portal-sync/internal/model"
	"github.com/avetisyanh/portal-sync/internal/portal"
	"github.com/avetisyanh/portal-sync/internal/queue"
)

// fakePortal counts calls and records the session each fetch received.
type fakePortal struct {
	authCalls  int
	fetchCalls int
	authResp   map[string]any
	authErr    error
	signupsRaw string
	elearnRaw  string
	fetchErr   error
	gotSession portal.Session
}

func (f *fakePortal) Authenticate(ctx context.Context) (map[string]any, error) {
	f.authCalls++
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.authResp, nil
}

func (f *fakePortal) FetchFacilitySignups(ctx context.Context, s portal.Session) (json.RawMessage, error) {
	f.fetchCalls++
	f.gotSession = s
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return json.RawMessage(f.signupsRaw), nil
}

func (f *fakePortal) FetchElearningCodes(ctx context.Context, s portal.Session) (json.RawMessage, error) {
	f.fetchCalls++
	f.gotSession = s
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return json.RawMessage(f.elearnRaw), nil
}

type fakeSignups struct {
	got []model.Signup
	err error
}

func (f *fakeSignups) UpsertBatch(ctx context.Context, recs []model.Signup) (int, error) {
	f.got = recs
	if f.err != nil {
		return 0, f.err
	}
	return len(recs), nil
}

type fakeCourses struct {
	got []model.Course
	err error
}

func (f *fakeCourses) UpsertBatch(ctx context.Context, recs []model.Course) (int, error) {
	f.got = recs
	if f.err != nil {
		return 0, f.err
	}
	return len(recs), nil
}

type fakeCodes struct {
	got []model.ElearningCode
	err error
}

func (f *fakeCodes) UpsertBatch(ctx context.Context, recs []model.ElearningCode) (int, error) {
	f.got = recs
	if f.err != nil {
		return 0, f.err
	}
	return len(recs), nil
}

func testCfg() config.Config {
	return config.Config{
		ExternalWebhookURL: "https://broker.example.com/auth",
		FacilityID:         "fac-42",
		DBTimeoutSec:       5,
	}
}

// authOK is the nested envelope the broker normally answers with.
var authOK = map[string]any{
	"response": map[string]any{
		"cookies": map[string]any{"ITIAuthToken": "abc"},
		"xsrf":    "xyz",
	},
}

func newTestHandler(p *fakePortal) (*WebhookHandler, *fakeSignups, *fakeCourses, *fakeCodes) {
	s, c, e := &fakeSignups{}, &fakeCourses{}, &fakeCodes{}
	h := NewWebhookHandler(testCfg(), p, s, c, e, nil)
	return h, s, c, e
}

func invoke(t *testing.T, fn echo.HandlerFunc, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(`{"trigger":"manual"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, fn(e.NewContext(req, rec)))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestGetFacilitySignups_MissingConfigMakesNoOutboundCall(t *testing.T) {
	for _, tc := range []struct {
		name    string
		mutate  func(*WebhookHandler)
		wantKey string
	}{
		{"no broker url", func(h *WebhookHandler) { h.Cfg.ExternalWebhookURL = "" }, "EXTERNAL_WEBHOOK_URL"},
		{"no facility", func(h *WebhookHandler) { h.Cfg.FacilityID = "" }, "FACILITY_ID"},
		{"no database", func(h *WebhookHandler) { h.Signups = nil }, "database"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakePortal{authResp: authOK, signupsRaw: `{"data":[]}`}
			h, _, _, _ := newTestHandler(p)
			tc.mutate(h)

			rec, body := invoke(t, h.GetFacilitySignups, http.MethodPost, "/webhook/get-facility-signups")
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "error", body["status"])
			assert.Contains(t, body["error"], tc.wantKey)
			assert.Zero(t, p.authCalls)
			assert.Zero(t, p.fetchCalls)
		})
	}
}

func TestGetFacilitySignups_FanOutAndCounts(t *testing.T) {
	p := &fakePortal{
		authResp: authOK,
		signupsRaw: `{"data":[{"member_id":"u1"},{"member_id":"u2"}],
			"courses":{"AgencyA":[{"course_id":"c1","agency":"AgencyA"}]}}`,
	}
	h, signups, courses, _ := newTestHandler(p)

	rec, body := invoke(t, h.GetFacilitySignups, http.MethodPost, "/webhook/get-facility-signups")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])

	// The derived session is replayed against the export endpoint.
	assert.Equal(t, "abc", p.gotSession.Cookies["ITIAuthToken"])
	assert.Equal(t, "xyz", p.gotSession.XSRF)

	require.Len(t, signups.got, 2)
	assert.Equal(t, "u1", signups.got[0].MemberID)
	require.Len(t, courses.got, 1)
	assert.Equal(t, "c1", courses.got[0].CourseID)

	db := body["database"].(map[string]any)
	users := db["users"].(map[string]any)
	assert.Equal(t, true, users["success"])
	assert.Equal(t, float64(2), users["count"])
	cs := db["courses"].(map[string]any)
	assert.Equal(t, float64(1), cs["count"])

	// The raw fetch payload is embedded untouched.
	resp := body["response"].(map[string]any)
	assert.Contains(t, resp, "data")
}

func TestGetFacilitySignups_PersistenceFailureIsSoft(t *testing.T) {
	p := &fakePortal{
		authResp: authOK,
		signupsRaw: `{"data":[{"member_id":"u1"},{"member_id":"u2"}],
			"courses":{"AgencyA":[{"course_id":"c1"}]}}`,
	}
	h, _, courses, _ := newTestHandler(p)
	courses.err = errors.New("deadlock on courses")

	rec, body := invoke(t, h.GetFacilitySignups, http.MethodPost, "/webhook/get-facility-signups")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])

	db := body["database"].(map[string]any)
	users := db["users"].(map[string]any)
	assert.Equal(t, float64(2), users["count"])
	cs := db["courses"].(map[string]any)
	assert.Equal(t, "deadlock on courses", cs["error"])
	assert.Equal(t, false, cs["success"])
}

func TestGetFacilitySignups_AuthFailureIsHard(t *testing.T) {
	p := &fakePortal{authErr: errors.New("auth call failed: connection refused")}
	h, signups, _, _ := newTestHandler(p)

	rec, body := invoke(t, h.GetFacilitySignups, http.MethodPost, "/webhook/get-facility-signups")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["error"], "connection refused")
	assert.Zero(t, p.fetchCalls)
	assert.Nil(t, signups.got)
}

func TestGetFacilitySignups_FetchFailureIsHard(t *testing.T) {
	p := &fakePortal{authResp: authOK, fetchErr: errors.New("portal fetch failed: tls handshake")}
	h, _, _, _ := newTestHandler(p)

	rec, body := invoke(t, h.GetFacilitySignups, http.MethodPost, "/webhook/get-facility-signups")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body["error"], "tls handshake")
}

func TestGetFacilitySignups_RawPayloadSkipsPersistence(t *testing.T) {
	p := &fakePortal{authResp: authOK, signupsRaw: `{"raw":"<html>login</html>"}`}
	h, signups, courses, _ := newTestHandler(p)

	rec, body := invoke(t, h.GetFacilitySignups, http.MethodPost, "/webhook/get-facility-signups")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, signups.got)
	assert.Nil(t, courses.got)
	assert.Empty(t, body["database"])
	// The opaque payload still goes back to the caller.
	resp := body["response"].(map[string]any)
	assert.Equal(t, "<html>login</html>", resp["raw"])
}

func TestGetElearningCodes_Success(t *testing.T) {
	p := &fakePortal{
		authResp:  authOK,
		elearnRaw: `{"data":[{"record_id":"r1","code":"ELC-1"},{"record_id":"r2","code":"ELC-2"},{"record_id":"r3","code":"ELC-3"}]}`,
	}
	h, _, _, codes := newTestHandler(p)

	rec, body := invoke(t, h.GetElearningCodes, http.MethodPost, "/webhook/get-elearning-codes")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, codes.got, 3)

	db := body["database"].(map[string]any)
	elc := db["elearning_codes"].(map[string]any)
	assert.Equal(t, float64(3), elc["count"])
}

func TestFinishSync_PublishesCompletionEvent(t *testing.T) {
	p := &fakePortal{authResp: authOK, signupsRaw: `{"data":[{"member_id":"u1"}]}`}
	h, _, _, _ := newTestHandler(p)

	var published queue.SyncCompletedEvent
	h.Publish = func(ctx context.Context, ev queue.SyncCompletedEvent) error {
		published = ev
		return nil
	}

	rec, _ := invoke(t, h.GetFacilitySignups, http.MethodPost, "/webhook/get-facility-signups")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fac-42", published.FacilityID)
	assert.Equal(t, "facility_signups", published.Resource)
	assert.Equal(t, 1, published.Results["users"].Count)
	assert.NotEmpty(t, published.CompletedAt)
}

func TestSyncUsers_AcknowledgesWithoutSideEffects(t *testing.T) {
	p := &fakePortal{}
	h, signups, _, _ := newTestHandler(p)

	rec, body := invoke(t, h.SyncUsers, http.MethodPost, "/webhook/sync-users")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
	assert.NotEmpty(t, body["received_at"])
	assert.Zero(t, p.authCalls)
	assert.Nil(t, signups.got)
}

func TestSyncStatus_DisabledWithoutRedis(t *testing.T) {
	h, _, _, _ := newTestHandler(&fakePortal{})

	rec, body := invoke(t, h.SyncStatus, http.MethodGet, "/v1/sync/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["enabled"])
}
