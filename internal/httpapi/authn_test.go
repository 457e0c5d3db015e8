package httpapi

import (
	"errors"
	"testing"

	"github.com/MajesticSpiral/safety-app/internal/auth"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "well formed", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "case insensitive scheme", header: "bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "padded", header: "  Bearer abc.def.ghi  ", want: "abc.def.ghi"},
		{name: "missing header", header: "", wantErr: auth.ErrMissingToken},
		{name: "blank token", header: "Bearer   ", wantErr: auth.ErrMissingToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractBearerToken(tc.header)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("extractBearerToken(%q) error = %v, want %v", tc.header, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractBearerToken(%q): %v", tc.header, err)
			}
			if got != tc.want {
				t.Fatalf("extractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestExtractBearerTokenRejectsOtherSchemes(t *testing.T) {
	if _, err := extractBearerToken("Basic dXNlcjpwYXNz"); err == nil {
		t.Fatal("expected an error for a non-bearer scheme")
	}
}

func TestPublicPathsSkipAuth(t *testing.T) {
	for _, path := range []string{"/authenticate", "/healthz", "/readyz", "/v1/info", "/metrics", "/openapi.yaml"} {
		if !isPublicPath(path) {
			t.Fatalf("%s should not require a token", path)
		}
	}
	for _, path := range []string{"/issues", "/addIssue", "/actions", "/addAction", "/inspections", "/addInspection", "/employees", "/events"} {
		if isPublicPath(path) {
			t.Fatalf("%s must require a token", path)
		}
	}
}
