package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MajesticSpiral/safety-app/api/spec"
	"github.com/MajesticSpiral/safety-app/internal/auth"
	"github.com/MajesticSpiral/safety-app/internal/obs"
	"github.com/MajesticSpiral/safety-app/internal/records"
	"github.com/MajesticSpiral/safety-app/internal/stream"
)

// ReadyProbe checks backing-store reachability for /readyz.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer. Legacy route names (/addIssue, /addAction) are
// kept for client compatibility.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	auth      *auth.Service
	employees auth.EmployeeStore
	records   records.Service
	stream    *stream.Stream

	corsOrigins  []string
	rateBurst    int
	ratePerSec   int
	maxBodyBytes int64
}

// Option configures the API.
type Option func(*API)

// WithCORSOrigins sets the allowed origins; "*" keeps the surface open.
func WithCORSOrigins(origins []string) Option {
	return func(a *API) {
		if len(origins) > 0 {
			a.corsOrigins = origins
		}
	}
}

// WithRateLimit tunes the per-IP token bucket.
func WithRateLimit(burst, perSec int) Option {
	return func(a *API) {
		if burst > 0 {
			a.rateBurst = burst
		}
		if perSec > 0 {
			a.ratePerSec = perSec
		}
	}
}

// WithMaxBodyBytes caps request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxBodyBytes = n
		}
	}
}

// New wires routes to the auth service, employee directory and record
// store.
func New(rp ReadyProbe, version string, authSvc *auth.Service, employees auth.EmployeeStore, recordSvc records.Service, events *stream.Stream, opts ...Option) *API {
	a := &API{
		mux:          http.NewServeMux(),
		readyProbe:   rp,
		version:      version,
		auth:         authSvc,
		employees:    employees,
		records:      recordSvc,
		stream:       events,
		corsOrigins:  []string{"*"},
		rateBurst:    20,
		ratePerSec:   10,
		maxBodyBytes: 20 << 20,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.HandleFunc("/openapi.yaml", a.OpenAPISpec)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/authenticate", a.handleAuthenticate)
	a.mux.HandleFunc("/employees", a.handleEmployees)

	a.mux.HandleFunc("/issues", a.handleIssues)
	a.mux.HandleFunc("/issues/", a.handleIssueResource)
	a.mux.HandleFunc("/addIssue", a.handleAddIssue)
	a.mux.HandleFunc("/actions", a.handleActions)
	a.mux.HandleFunc("/addAction", a.handleAddAction)
	a.mux.HandleFunc("/inspections", a.handleInspections)
	a.mux.HandleFunc("/addInspection", a.handleAddInspection)

	a.mux.HandleFunc("/events", a.handleEvents)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the full middleware-wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = CORS(h, a.corsOrigins)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- health/info handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "safety-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "safety-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

func (a *API) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(spec.OpenAPI)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 20<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
