// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/textfeature/internal/feature"
	"github.com/ManuGH/textfeature/internal/keyword"
	"github.com/ManuGH/textfeature/internal/log"
)

// Error codes returned in the "error" member of error bodies.
const (
	CodeInvalidJSON      = "invalid_json"
	CodeInvalidRequest   = "invalid_request"
	CodeInvalidEntry     = "invalid_entry"
	CodeBodyTooLarge     = "body_too_large"
	CodeBatchTooLarge    = "batch_too_large"
	CodeRateLimited      = "rate_limit_exceeded"
	CodeNoStore          = "no_store"
	CodePersistFailed    = "persist_failed"
	CodeRequestCanceled  = "request_canceled"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeInternal         = "internal_error"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error body
func writeError(w http.ResponseWriter, code int, errCode, detail string) {
	writeJSON(w, code, ErrorResponse{Error: errCode, Detail: detail})
}

// writeServiceError maps err onto a status code and error body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, err.Error())
	case errors.Is(err, feature.ErrTooManyDocuments):
		writeError(w, http.StatusRequestEntityTooLarge, CodeBatchTooLarge, err.Error())
	case errors.Is(err, feature.ErrUnknownFormat):
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	case errors.Is(err, keyword.ErrInvalidEntry):
		writeError(w, http.StatusBadRequest, CodeInvalidEntry, err.Error())
	case errors.Is(err, feature.ErrNoStore):
		writeError(w, http.StatusConflict, CodeNoStore, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, CodeRequestCanceled, err.Error())
	default:
		logger := log.WithTraceContext(r.Context(), log.WithComponentFromContext(r.Context(), "api"))
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "api.request_failed").
			Str(log.FieldPath, r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, CodeInternal, "")
	}
}
