package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON and writeError, so success bodies
// and error bodies always have the same shape:
//
//	writeJSON(w, http.StatusOK, data)
//	writeError(w, err)
//
// Errors are always:
//
//	{"error": "forbidden", "message": "access denied"}
//
// plus "field" when a validation error names the offending input.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sakif/foodlist/internal/apperror"
)

// maxBodyBytes caps request bodies. Every payload here is a handful of
// short fields.
const maxBodyBytes = 64 << 10

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "forbidden")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Input that failed validation, if any
}

// okResponse is the body of every mutation that has nothing else to say.
type okResponse struct {
	OK bool `json:"ok"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be set before the body is written.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// errors.Is walks the chain, so a sentinel wrapped by an *AppError and then
// by fmt.Errorf("...: %w") in the service still matches.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest // 400
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized // 401
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden // 403
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrCatalogEmpty):
			status = http.StatusNotFound // 404
			errorType = "catalog_empty"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound // 404
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict // 409
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	// Unknown error: never echo it, it may contain SQL or file paths.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// isInternal reports whether writeError would answer err with a 500.
// Handlers use it to decide what is worth an Error log line.
func isInternal(err error) bool {
	var appErr *apperror.AppError
	return !errors.As(err, &appErr)
}

// decodeJSON reads a JSON body into dst. An empty body decodes as {}, the
// same as a client that sent no fields.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperror.ValidationFailed("body", "invalid JSON body")
}

// =========================================================================
// WIRE TYPES
// =========================================================================

// idField is a row id as clients send it: a JSON number or a numeric
// string. Anything else leaves it present but not valid, so the handler
// can choose between "required", "invalid" and a uniform AccessDenied.
type idField struct {
	value   int64
	present bool
	valid   bool
}

func (f *idField) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	f.present = true

	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		f.value, f.valid = v, true
	}
	return nil
}

// id returns the value, or 0 when absent or unusable. No row has id 0, so
// a guarded lookup with it is simply denied.
func (f idField) id() int64 {
	if !f.valid {
		return 0
	}
	return f.value
}

// checkedFlag is the is_checked field: 0/1 on the wire, but true/false and
// "1"/"0" are accepted too. Absent or null means unchecked.
type checkedFlag bool

func (c *checkedFlag) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}

	switch s {
	case "null", "", "0", "false", "False":
		*c = false
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*c = v != 0
		return nil
	}
	*c = true
	return nil
}

// boolToInt renders a checked flag the way clients expect it.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
