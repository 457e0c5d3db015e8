package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
)

// handleEvents handles Server-Sent Events for newly created records. It sits
// behind the access guard like every record endpoint.
func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	if a.stream == nil {
		writeError(w, r, http.StatusServiceUnavailable, "streaming disabled")
		return
	}
	if _, ok := identity(r); !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := a.stream.Subscribe(ctx)

	// Initial comment establishes the stream for the client.
	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	for event := range ch {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
	}
}
