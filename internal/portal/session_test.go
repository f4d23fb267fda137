package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSession_NestedAndFlatAreEquivalent(t *testing.T) {
	nested := map[string]any{
		"response": map[string]any{
			"cookies": map[string]any{"ITIAuthToken": "abc", "JSESSIONID": "s1"},
			"xsrf":    "xyz",
		},
	}
	flat := map[string]any{
		"cookies": map[string]any{"ITIAuthToken": "abc", "JSESSIONID": "s1"},
		"xsrf":    "xyz",
	}

	fromNested := ExtractSession(nested)
	fromFlat := ExtractSession(flat)

	assert.Equal(t, fromNested, fromFlat)
	assert.Equal(t, "xyz", fromNested.XSRF)
	assert.Equal(t, "abc", fromNested.Cookies["ITIAuthToken"])
}

func TestExtractSession_NestedWinsOverFlat(t *testing.T) {
	resp := map[string]any{
		"response": map[string]any{
			"cookies": map[string]any{"ITIAuthToken": "inner"},
			"xsrf":    "inner-token",
		},
		"cookies": map[string]any{"ITIAuthToken": "outer"},
		"xsrf":    "outer-token",
	}
	s := ExtractSession(resp)
	assert.Equal(t, "inner", s.Cookies["ITIAuthToken"])
	assert.Equal(t, "inner-token", s.XSRF)
}

func TestExtractSession_UnknownShapeYieldsEmptySession(t *testing.T) {
	for name, resp := range map[string]map[string]any{
		"error payload": {"error": "bad facility"},
		"raw wrapper":   {"raw": "<html>login page</html>"},
		"empty object":  {},
	} {
		s := ExtractSession(resp)
		assert.True(t, s.Empty(), name)
		assert.NotNil(t, s.Cookies, name) // explicit empty set, never nil
	}
}

func TestExtractSession_IgnoresNonStringCookieValues(t *testing.T) {
	s := ExtractSession(map[string]any{
		"cookies": map[string]any{"ITIAuthToken": "abc", "bogus": 42},
		"xsrf":    "xyz",
	})
	assert.Equal(t, map[string]string{"ITIAuthToken": "abc"}, s.Cookies)
}

func TestCookieHeader_SortedAndJoined(t *testing.T) {
	s := Session{Cookies: map[string]string{
		"JSESSIONID":   "s1",
		"ITIAuthToken": "abc",
	}}
	assert.Equal(t, "ITIAuthToken=abc; JSESSIONID=s1", s.CookieHeader())
	assert.Equal(t, "", Session{}.CookieHeader())
}
