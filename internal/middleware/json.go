package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MedSupply-Manager/user-service/internal/model"
	"github.com/MedSupply-Manager/user-service/pkg/apierror"
)

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Success: false,
		Message: message,
	})
}

func statusFor(err error) int {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func messageFor(err error) string {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Unexpected server error"
}
