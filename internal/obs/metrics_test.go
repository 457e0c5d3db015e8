package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                      "/",
		"/metrics":              "/metrics",
		"/issues":               "/issues",
		"/issues/01ABCDEF":      "/issues/:id",
		"/actions/xyz":          "/actions/:id",
		"/issues/abc/photos":    "/issues/:id/photos",
		"/authenticate":         "/authenticate",
		"/inspections?limit=10": "/inspections",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
