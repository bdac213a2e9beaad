package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON and writeError, so every error
// body has the same shape:
//
//	{"error": "not_found", "message": "account not found with id abc123"}
//
// The "error" field is machine-readable; "message" is for people.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/gamehub/internal/apperror"
	"github.com/sakif/gamehub/internal/auth"
)

// maxBodyBytes caps request bodies. Payloads here are a handful of fields.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status MUST be set before the body is written; once Encode
// writes, later header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends it.
//
// ERROR MAPPING:
//
//	ErrValidation   → 400
//	ErrUnauthorized → 401
//	ErrForbidden    → 403
//	ErrNotFound     → 404
//	ErrConflict     → 409
//	ErrUpstream     → 503 unavailable, 408 timeout, 502 bad response
//	anything else   → 500, logged, details hidden from the client
//
// Upstream failures are logged at Warn and unhandled errors at Error, both
// through the handler's logger.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrUpstream):
			status, errorType = upstreamStatus(appErr.Kind)
			logger.Warn("upstream call failed", slog.String("error", err.Error()))
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// NEVER expose internal error details: they can carry SQL or file paths.
	logger.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

func upstreamStatus(kind apperror.UpstreamKind) (int, string) {
	switch kind {
	case apperror.UpstreamTimeout:
		return http.StatusRequestTimeout, "upstream_timeout"
	case apperror.UpstreamBadResponse:
		return http.StatusBadGateway, "upstream_bad_response"
	default:
		return http.StatusServiceUnavailable, "upstream_unavailable"
	}
}

// decodeJSON reads the request body into dst. Malformed JSON is a
// validation error so it answers 400 like any other bad input.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

// resolveAccountID returns explicit when given, otherwise the account id
// from a valid token, otherwise "". An empty result is rejected by the
// service as a missing accountId.
func resolveAccountID(r *http.Request, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	if id, ok := auth.AccountIDFromContext(r.Context()); ok {
		return id
	}
	return ""
}
