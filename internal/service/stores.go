package service

import (
	"context"
	"time"

	"github.com/MedSupply-Manager/user-service/internal/model"
)

// UserStore is the credential store contract. The pgx repository implements
// it in production; tests supply an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Deactivate(ctx context.Context, id string) error

	// RecordLoginFailure must be a single atomic increment on the store side:
	// two concurrent failures may not collapse into one.
	RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockUntil time.Time) (int, *time.Time, error)
	ResetLoginFailures(ctx context.Context, id string) error

	MarkEmailVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id string, resetToken string, expires time.Time) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

// SessionStore is the session registry contract.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	FindByRefreshToken(ctx context.Context, refreshToken string) (model.Session, error)
	Rotate(ctx context.Context, sessionID string, accessToken string, refreshToken string) error
	Revoke(ctx context.Context, userID string, refreshToken string) error
	RevokeByRefreshToken(ctx context.Context, refreshToken string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}
