package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/w-h-a/redflag/internal/service/analysis"
	"github.com/w-h-a/redflag/internal/service/user"
	"github.com/w-h-a/redflag/recognizer"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string, msg string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Message: msg, Code: code}})
}

// classify maps a service error onto a status, a stable code and a message
// that is safe to show the caller.
func classify(err error) (int, string, string) {
	var verr *analysis.ValidationError
	switch {
	case errors.As(err, &verr):
		switch verr.Kind {
		case analysis.TooLarge:
			return http.StatusRequestEntityTooLarge, string(verr.Kind), verr.Message
		case analysis.UnsupportedType:
			return http.StatusUnsupportedMediaType, string(verr.Kind), verr.Message
		default:
			return http.StatusBadRequest, string(verr.Kind), verr.Message
		}
	case errors.Is(err, errMissingIdentity):
		return http.StatusUnauthorized, "UNAUTHENTICATED", err.Error()
	case errors.Is(err, errInvalidIdentity):
		return http.StatusBadRequest, "INVALID_USER_ID", err.Error()
	case errors.Is(err, analysis.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "you do not have access to this analysis"
	case errors.Is(err, analysis.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "analysis not found"
	case errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "user not found"
	case errors.Is(err, recognizer.ErrRecognitionFailed):
		return http.StatusBadGateway, "RECOGNITION_FAILED", "the image could not be analyzed"
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal server error"
	}
}
