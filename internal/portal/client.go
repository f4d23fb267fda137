// Package portal implements the two-hop protocol against the club portal:
// authenticate through the auth broker to obtain session cookies plus an
// XSRF token, then replay them against a session-cookie-based export API.
// Each method shapes its input into one HTTP request and its response into
// one output value; the login state is the only implied input between them.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// The export API lives on a fixed host.  Both resource kinds share the
// cookie scheme but use distinct paths and Referer values; the portal
// rejects export calls whose Referer does not match the originating report
// page.
const (
	portalHost       = "https://members.clubfitportal.com"
	signupsPath      = "/api/export/facilitySignups"
	elearningPath    = "/api/export/elearningCodes"
	signupsReferer   = portalHost + "/reports/signups"
	elearningReferer = portalHost + "/reports/elearning"

	xsrfHeader = "X-XSRF-TOKEN"
)

// Client issues the outbound HTTPS calls.  AuthURL is the configured auth
// broker endpoint; BaseURL defaults to the fixed portal host and exists so
// tests can point the export calls at a local server.
type Client struct {
	AuthURL    string
	FacilityID string
	BaseURL    string
	HTTP       *http.Client
}

// NewClient returns a Client bound to the given auth broker endpoint and
// facility.  The timeout applies to every outbound call.
func NewClient(authURL, facilityID string, timeout time.Duration) *Client {
	return &Client{
		AuthURL:    authURL,
		FacilityID: facilityID,
		BaseURL:    portalHost,
		HTTP:       &http.Client{Timeout: timeout},
	}
}

// Authenticate posts {function: "authme", facility_id} to the auth broker
// and returns the decoded response object.  Bodies that are not a JSON
// object come back as {"raw": <text>} rather than an error; only transport
// failures are fatal.  No retry is attempted.
func (c *Client) Authenticate(ctx context.Context) (map[string]any, error) {
	body, err := json.Marshal(map[string]string{
		"function":    "authme",
		"facility_id": c.FacilityID,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.AuthURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth call failed: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("auth call failed: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(text, &m); err != nil {
		return map[string]any{"raw": string(text)}, nil
	}
	return m, nil
}

// FetchFacilitySignups requests the facility-signups export with the given
// session.  The result is the raw JSON payload; non-JSON bodies are wrapped
// as {"raw": <text>}.
func (c *Client) FetchFacilitySignups(ctx context.Context, s Session) (json.RawMessage, error) {
	return c.fetch(ctx, signupsPath, signupsReferer, s)
}

// FetchElearningCodes requests the e-learning-codes export with the given
// session.
func (c *Client) FetchElearningCodes(ctx context.Context, s Session) (json.RawMessage, error) {
	return c.fetch(ctx, elearningPath, elearningReferer, s)
}

// fetch performs one export GET: facility id as a query parameter, the
// session serialized into Cookie and XSRF headers.  The full resource set
// is requested in one call; there is no pagination.
func (c *Client) fetch(ctx context.Context, path, referer string, s Session) (json.RawMessage, error) {
	url := c.BaseURL + path + "?facilityId=" + c.FacilityID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", referer)
	if h := s.CookieHeader(); h != "" {
		req.Header.Set("Cookie", h)
	}
	if s.XSRF != "" {
		req.Header.Set(xsrfHeader, s.XSRF)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portal fetch failed: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("portal fetch failed: %w", err)
	}
	if json.Valid(text) {
		return json.RawMessage(text), nil
	}
	wrapped, err := json.Marshal(map[string]string{"raw": string(text)})
	if err != nil {
		return nil, err
	}
	return wrapped, nil
}
