package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/evcraddock/realty-crm/internal/auth"
	"github.com/evcraddock/realty-crm/internal/client"
	"github.com/evcraddock/realty-crm/internal/db"
	"github.com/evcraddock/realty-crm/internal/logging"
	"github.com/evcraddock/realty-crm/internal/negotiation"
	"github.com/evcraddock/realty-crm/internal/property"
	"github.com/evcraddock/realty-crm/internal/visit"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// writeError maps a domain error to its HTTP status.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *visit.ValidationError
	switch {
	case errors.As(err, &verr):
		apiJSON(w, map[string]string{"error": verr.Message, "field": verr.Field}, http.StatusUnprocessableEntity)
	case errors.Is(err, auth.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		apiError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, db.ErrNotFound):
		apiError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, visit.ErrConflict), errors.Is(err, auth.ErrUserExists):
		apiError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, visit.ErrValidation),
		errors.Is(err, property.ErrInvalid),
		errors.Is(err, client.ErrInvalid),
		errors.Is(err, negotiation.ErrInvalid),
		errors.Is(err, auth.ErrInvalidUser):
		apiError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		slog.Error("request failed",
			"request_id", logging.RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		apiError(w, "internal server error", http.StatusInternalServerError)
	}
}

// decodeJSON reads the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// parseID parses a path id, writing a 400 on failure.
func parseID(w http.ResponseWriter, s, kind string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		apiError(w, "invalid "+kind+" ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func methodNotAllowed(w http.ResponseWriter) {
	apiError(w, "method not allowed", http.StatusMethodNotAllowed)
}

func deleted(w http.ResponseWriter) {
	apiJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}
