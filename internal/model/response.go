package model

// Response bodies preserve the original wire surface: a success boolean on
// every response and a message on failure.

type ErrorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type LoginResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	User    PublicUser `json:"user"`
}

type RefreshResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

type VerifyTokenResponse struct {
	Success bool       `json:"success"`
	Valid   bool       `json:"valid"`
	User    PublicUser `json:"user"`
}

type VerifyEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Email   string `json:"email"`
}

type ProfileResponse struct {
	Success bool       `json:"success"`
	User    PublicUser `json:"user"`
}

type UserListResponse struct {
	Success bool         `json:"success"`
	Users   []PublicUser `json:"users"`
	Count   int          `json:"count"`
}

type UserResponse struct {
	Success bool       `json:"success"`
	User    PublicUser `json:"user"`
}

type LockoutResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	MinutesRemaining int    `json:"minutesRemaining"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}
