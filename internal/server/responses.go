package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"bookstack/internal/app"
	"bookstack/internal/util"
	"bookstack/pkg/auth"
)

// envelope is the stable response shape: statusCode plus either a success
// payload or a short human-readable error message. Internals never leak.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeResult(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{StatusCode: status, Data: data, Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

// writeAppError maps application sentinel errors onto the error taxonomy.
// Unrecognized errors become an opaque 500, logged with the request id.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidEmail), errors.Is(err, app.ErrInvalidPassword):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrEmailAlreadyRegistered):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrInvalidID),
		errors.Is(err, app.ErrUploadFailed),
		errors.Is(err, app.ErrInvalidCategory),
		errors.Is(err, app.ErrInvalidRole),
		errors.Is(err, app.ErrNegativePrice):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrBookNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		util.LoggerFromContext(r.Context()).Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// validationMessage renders a request-validation failure as a short
// field-level message without echoing submitted values.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				parts = append(parts, field+" is required")
			case "email":
				parts = append(parts, field+" must be a valid email address")
			case "min":
				parts = append(parts, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
			case "gte":
				parts = append(parts, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
			default:
				parts = append(parts, field+" is invalid")
			}
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}
