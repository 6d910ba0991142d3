package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/MedSupply-Manager/user-service/internal/model"
	"github.com/MedSupply-Manager/user-service/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError is the single translation point from internal errors to wire
// responses. Anything unclassified is logged in full and surfaced as a
// generic 500; stack traces and internal identifiers never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var lockErr *apierror.LockoutError
	if errors.As(err, &lockErr) {
		writeJSON(w, lockErr.HTTPStatus, model.LockoutResponse{
			Success:          false,
			Message:          lockErr.Message,
			MinutesRemaining: lockErr.MinutesRemaining,
		})
		return
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.HTTPStatus, model.ErrorResponse{
			Success: false,
			Message: apiErr.Message,
		})
		return
	}

	switch {
	case errors.Is(err, model.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Success: false, Message: "User not found"})
	case errors.Is(err, model.ErrUserAlreadyExists):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{Success: false, Message: "User already exists"})
	case errors.Is(err, model.ErrSessionNotFound):
		writeJSON(w, http.StatusForbidden, model.ErrorResponse{Success: false, Message: "Session not found or revoked"})
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Success: false, Message: "Internal Server Error"})
	}
}

// writeValidationError renders ozzo field errors in the original wire shape:
// a message plus per-field detail.
func writeValidationError(w http.ResponseWriter, err error) {
	resp := model.ErrorResponse{
		Success: false,
		Message: "Validation failed",
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for field := range fieldErrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			resp.Errors = append(resp.Errors, model.FieldError{
				Field:   field,
				Message: fieldErrs[field].Error(),
			})
		}
	} else {
		resp.Message = err.Error()
	}

	writeJSON(w, http.StatusBadRequest, resp)
}
