package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MajesticSpiral/safety-app/internal/auth"
	"github.com/MajesticSpiral/safety-app/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// Paths reachable without a session token. Everything else, including
// every record read and write, passes through the access guard.
var publicPaths = []string{
	"/authenticate",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/openapi.yaml",
	"/",
}

// withAuth is the access guard: it resolves the bearer token to an
// employee identity or rejects the request.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			if errors.Is(err, auth.ErrMissingToken) {
				obs.AuthFailure("missing_token")
				writeError(w, r, http.StatusUnauthorized, "missing bearer token")
				return
			}
			obs.AuthFailure("invalid_token")
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		identity, err := a.auth.Verify(token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				obs.AuthFailure("expired_token")
				writeError(w, r, http.StatusUnauthorized, "token expired")
			case errors.Is(err, auth.ErrMissingToken):
				obs.AuthFailure("missing_token")
				writeError(w, r, http.StatusUnauthorized, "missing bearer token")
			default:
				obs.AuthFailure("invalid_token")
				writeError(w, r, http.StatusUnauthorized, "invalid token")
			}
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), identity)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identity pulls the guard-resolved identity; handlers behind withAuth
// can rely on it being present.
func identity(r *http.Request) (auth.Identity, bool) {
	return auth.IdentityFromContext(r.Context())
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", auth.ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", auth.ErrMissingToken
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
