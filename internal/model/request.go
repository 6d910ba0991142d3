package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 30), is.Alphanumeric),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
		validation.Field(&r.ConfirmPassword, validation.By(matches(r.Password))),
		validation.Field(&r.Role, validation.By(validRole)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
		validation.Field(&r.ConfirmPassword, validation.By(matches(r.Password))),
	)
}

// UpdateUserRequest covers the admin PUT. Password is decoded only so it can
// be rejected: password changes go through the reset flow, never this
// endpoint.
type UpdateUserRequest struct {
	Username      *string `json:"username"`
	Email         *string `json:"email"`
	Role          *string `json:"role"`
	Status        *string `json:"status"`
	EmailVerified *bool   `json:"emailVerified"`
	Password      *string `json:"password"`
}

func (r UpdateUserRequest) Validate() error {
	if r.Password != nil {
		return errors.New("password cannot be updated through this endpoint")
	}
	if r.Username == nil && r.Email == nil && r.Role == nil && r.Status == nil && r.EmailVerified == nil {
		return errors.New("at least one field must be provided")
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(3, 30), is.Alphanumeric),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Role, validation.By(validRolePtr)),
		validation.Field(&r.Status, validation.By(validStatusPtr)),
	)
}

func matches(expected string) validation.RuleFunc {
	return func(value interface{}) error {
		v, _ := value.(string)
		if v == "" {
			return errors.New("confirm password is required")
		}
		if v != expected {
			return errors.New("passwords do not match")
		}
		return nil
	}
}

func validRole(value interface{}) error {
	v, _ := value.(string)
	if v == "" {
		return nil
	}
	if !Role(v).Valid() {
		return errors.New("invalid role")
	}
	return nil
}

func validRolePtr(value interface{}) error {
	v, _ := value.(*string)
	if v == nil {
		return nil
	}
	return validRole(*v)
}

func validStatusPtr(value interface{}) error {
	v, _ := value.(*string)
	if v == nil {
		return nil
	}
	if !Status(*v).Valid() {
		return errors.New("invalid status")
	}
	return nil
}
