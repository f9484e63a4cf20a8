package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/pkordes/daylog/internal/domain"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	codeValidation    = "validation_error"
	codeNotFound      = "not_found"
	codeForbidden     = "forbidden"
	codeRateLimited   = "rate_limited"
	codeCollaborator  = "collaborator_failure"
	codeTooLarge      = "payload_too_large"
	codeInternalError = "internal_error"
)

// writeError writes an ErrorResponse with the given status.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// requestError answers a request rejected before reaching the service layer
// (e.g. missing or malformed body).
func requestError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large")
		return
	}
	writeError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
}

// serviceError maps a service error to its HTTP status. Unexpected errors
// become 500 and are logged; their text is not sent to the client.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var ce *domain.CollaboratorError
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, notFound)
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, unwrapMessage(err, domain.ErrForbidden))
	case errors.Is(err, domain.ErrRateLimited):
		w.Header().Set("Retry-After", "10")
		writeError(w, http.StatusTooManyRequests, codeRateLimited, unwrapMessage(err, domain.ErrRateLimited))
	case errors.As(err, &ce):
		writeError(w, http.StatusBadGateway, codeCollaborator, ce.Op+" "+string(ce.Outcome))
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal server error")
	}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.EntryService.Create: validation error: description required"
// becomes "description required".
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errEmptyBody is returned by decodeJSON when the body has no content at
// all. Handlers with an optional body treat it as "use the defaults".
var errEmptyBody = errors.New("request body must be a valid JSON object")

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return errors.New("request body must be a valid JSON object")
	}
	return nil
}
