package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/services"
)

// ownerHeader carries the caller's owner id on every API request.
const ownerHeader = "X-Owner-ID"

// ownerID extracts the owner scope from the request header. A missing
// header is answered with 400 and reported via the bool.
func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := strings.TrimSpace(r.Header.Get(ownerHeader))
	if owner == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(ownerHeader+" header is required"))
		return "", false
	}
	return owner, true
}

// monthParams reads year/month query parameters, defaulting to the current
// month.
func monthParams(r *http.Request) (year, month int, err error) {
	now := time.Now()
	year, month = now.Year(), int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %d: must be between 1 and 12", month)
	}
	return year, month, nil
}

// decodeJSON parses a request body into v, capping the body size.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps service errors onto HTTP statuses: validation failures
// to 422, missing entities to 404, referential-integrity failures to 409,
// the rest to 500. The 409 carries the service message so the caller can
// see which account is gone and resolve the conflict.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrAccountGone):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case services.IsValidation(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	default:
		s.logger.ErrorContext(r.Context(), "Request failed",
			log.FieldError, err, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
