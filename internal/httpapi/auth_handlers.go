package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/MajesticSpiral/safety-app/internal/audit"
	"github.com/MajesticSpiral/safety-app/internal/auth"
	"github.com/MajesticSpiral/safety-app/internal/obs"
)

type authenticateRequest struct {
	ClockNumber string `json:"clock_number"`
	Password    string `json:"password"`
}

type authenticateResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *API) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req authenticateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, expiresAt, err := a.auth.Authenticate(r.Context(), req.ClockNumber, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// One message for unknown clock number and wrong password;
			// responses must not let callers enumerate accounts.
			obs.AuthFailure("invalid_credentials")
			writeError(w, r, http.StatusUnauthorized, "invalid clock number or password")
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.token.issued", map[string]any{
		"clock_number": req.ClockNumber,
		"expires_at":   expiresAt.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, authenticateResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

type employeeResponse struct {
	EmployeeID  string `json:"employee_id"`
	ClockNumber string `json:"clocknumber"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

// handleEmployees keeps the legacy /employees path but requires a
// session and never exposes password material.
func (a *API) handleEmployees(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	employees, err := a.employees.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]employeeResponse, 0, len(employees))
	for _, emp := range employees {
		out = append(out, employeeResponse{
			EmployeeID:  emp.ID,
			ClockNumber: emp.ClockNumber,
			FirstName:   emp.FirstName,
			LastName:    emp.LastName,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
