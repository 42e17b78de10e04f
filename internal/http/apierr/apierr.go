// Package apierr renders errors as JSON API responses.
package apierr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

const (
	CodeNotFound      = "not_found"
	CodeInvalidInput  = "invalid_input"
	CodeDuplicateName = "duplicate_name"
	CodeAlreadyExists = "already_exists"
	CodeUnauthorized  = "unauthorized"
	CodeInternal      = "internal"
)

type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Write maps err to a status code and error code. Unknown errors are
// logged and reported as internal without their message.
func Write(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		write(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidInput):
		write(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
	case errors.Is(err, ledger.ErrDuplicateName):
		write(w, http.StatusConflict, CodeDuplicateName, err.Error())
	case errors.Is(err, ledger.ErrAlreadyExists):
		write(w, http.StatusConflict, CodeAlreadyExists, err.Error())
	default:
		slog.Error("request failed", "error", err)
		write(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

// BadRequest reports a malformed request.
func BadRequest(w http.ResponseWriter, message string) {
	write(w, http.StatusBadRequest, CodeInvalidInput, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	write(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

func write(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Response{Code: code, Message: message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
