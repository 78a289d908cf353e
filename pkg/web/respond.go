package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmehra2102/plasto-orders/pkg/apperr"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error renders err as {"detail": ...} using the apperr taxonomy. Failures
// outside the taxonomy are logged and reported without their message.
func Error(w http.ResponseWriter, log *slog.Logger, err error) {
	status := apperr.HTTPStatus(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", "err", err)
		detail = "internal server error"
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	JSON(w, status, errorBody{Detail: detail})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "invalid body: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return apperr.ErrInvalidArgument }
