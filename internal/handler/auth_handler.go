package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MedSupply-Manager/user-service/internal/middleware"
	"github.com/MedSupply-Manager/user-service/internal/model"
	"github.com/MedSupply-Manager/user-service/internal/service"
)

type AuthHandler struct {
	auth          *service.AuthService
	secureCookies bool
}

func NewAuthHandler(auth *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, secureCookies: secureCookies}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	userID, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.RegisterResponse{
		Success: true,
		Message: "User registered successfully",
		UserID:  userID,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	meta := model.SessionMetadata{
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
	}

	user, pair, err := h.auth.Login(r.Context(), req, meta)
	if err != nil {
		writeError(w, err)
		return
	}

	setAuthCookies(w, pair, h.secureCookies)
	writeJSON(w, http.StatusOK, model.LoginResponse{
		Success: true,
		Message: "Login successful",
		User:    user.Public(),
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Success: false, Message: "No refresh token provided"})
		return
	}

	_, pair, err := h.auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		clearAuthCookies(w, h.secureCookies)
		writeError(w, err)
		return
	}

	setAuthCookies(w, pair, h.secureCookies)
	writeJSON(w, http.StatusOK, model.RefreshResponse{
		Success:     true,
		Message:     "Token refreshed successfully",
		AccessToken: pair.AccessToken,
	})
}

// VerifyToken answers the frontend's session probe. It validates the cookie
// itself rather than going through RequireAuth so that a missing or expired
// token is an ordinary answer, not a logged auth failure.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Success: false, Message: "No access token provided"})
		return
	}

	user, err := h.auth.VerifyAccess(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.VerifyTokenResponse{
		Success: true,
		Valid:   true,
		User:    user.Public(),
	})
}

// Logout accepts the refresh token from the request body, the cookie, or the
// Authorization header, in that order. Cookies are cleared on every outcome
// so a client with a stale session still ends up logged out locally.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken := h.logoutToken(r)
	if refreshToken == "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Success: false, Message: "Refresh token is required"})
		return
	}

	clearAuthCookies(w, h.secureCookies)

	if err := h.auth.Logout(r.Context(), refreshToken); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true, Message: "Logged out successfully"})
}

func (h *AuthHandler) logoutToken(r *http.Request) string {
	var req model.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}

	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	return ""
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	tokenString := chi.URLParam(r, "token")
	if tokenString == "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Success: false, Message: "Verification token is required"})
		return
	}

	email, err := h.auth.VerifyEmail(r.Context(), tokenString)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.VerifyEmailResponse{
		Success: true,
		Message: "Email verified successfully",
		Email:   email,
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true, Message: "Password reset email sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Success: true, Message: "Password updated successfully"})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Success: false, Message: "Authentication required"})
		return
	}

	writeJSON(w, http.StatusOK, model.ProfileResponse{
		Success: true,
		User:    user.Public(),
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
