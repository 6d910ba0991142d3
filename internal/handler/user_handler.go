package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MedSupply-Manager/user-service/internal/middleware"
	"github.com/MedSupply-Manager/user-service/internal/model"
	"github.com/MedSupply-Manager/user-service/internal/service"
)

// UserHandler serves the admin-only user management surface. Every route is
// behind RequireAuth and RequireAdmin, so handlers can assume an authenticated
// admin in the request context.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UserListResponse{
		Success: true,
		Users:   users,
		Count:   len(users),
	})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UserResponse{Success: true, User: user})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.users.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UserResponse{Success: true, User: user})
}

// Delete deactivates the target account. The row survives so audit history
// keeps a valid user reference; only the status flips.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Success: false, Message: "Authentication required"})
		return
	}

	if err := h.users.Deactivate(r.Context(), id, actor.ID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true, Message: "User deleted successfully"})
}

// Dashboard is the smoke-test route the frontend uses to probe admin access.
func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true, Message: "Welcome to Admin Dashboard!"})
}
