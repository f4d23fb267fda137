package portal

import (
	"sort"
	"strings"
)

// Session carries the cookie set and XSRF token obtained from one auth
// call.  It authorizes exactly one subsequent resource fetch and is never
// persisted or cached across invocations.
type Session struct {
	Cookies map[string]string
	XSRF    string
}

// Empty reports whether the session carries no credentials at all.
func (s Session) Empty() bool { return len(s.Cookies) == 0 && s.XSRF == "" }

// CookieHeader serializes the cookie set into a Cookie header value.  Keys
// are sorted so the header is deterministic.
func (s Session) CookieHeader() string {
	if len(s.Cookies) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s.Cookies))
	for k := range s.Cookies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+s.Cookies[k])
	}
	return strings.Join(parts, "; ")
}

// ExtractSession normalizes an auth response into a Session.  The broker
// answers in one of two envelopes: nested {response: {cookies, xsrf}} or
// flat {cookies, xsrf}.  The nested shape is checked first.  When neither
// matches, the result is an explicit empty Session rather than an error;
// the unauthenticated replay then fails at the resource fetch with the
// portal's own error payload, which is where the caller surfaces it.
func ExtractSession(authResp map[string]any) Session {
	if inner, ok := authResp["response"].(map[string]any); ok {
		if s, ok := sessionFrom(inner); ok {
			return s
		}
	}
	if s, ok := sessionFrom(authResp); ok {
		return s
	}
	return Session{Cookies: map[string]string{}}
}

// sessionFrom reads the {cookies, xsrf} pair out of one envelope level.
// It matches only when at least one of the two fields is present and well
// typed.
func sessionFrom(m map[string]any) (Session, bool) {
	s := Session{Cookies: map[string]string{}}
	found := false
	if raw, ok := m["cookies"].(map[string]any); ok {
		found = true
		for name, v := range raw {
			if val, ok := v.(string); ok {
				s.Cookies[name] = val
			}
		}
	}
	if tok, ok := m["xsrf"].(string); ok {
		found = true
		s.XSRF = tok
	}
	return s, found
}
