package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MedSupply-Manager/user-service/internal/mail"
	"github.com/MedSupply-Manager/user-service/internal/model"
	"github.com/MedSupply-Manager/user-service/internal/token"
	"github.com/MedSupply-Manager/user-service/pkg/apierror"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	users       UserStore
	sessions    SessionStore
	tokens      *token.Issuer
	mailer      mail.Mailer
	lockout     LockoutPolicy
	bcryptCost  int
	frontendURL string
	now         func() time.Time
}

type AuthOption func(*AuthService)

// WithAuthClock injects a time source for tests.
func WithAuthClock(now func() time.Time) AuthOption {
	return func(s *AuthService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLockoutPolicy(policy LockoutPolicy) AuthOption {
	return func(s *AuthService) {
		s.lockout = policy.normalized()
	}
}

func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

func NewAuthService(
	users UserStore,
	sessions SessionStore,
	tokens *token.Issuer,
	mailer mail.Mailer,
	frontendURL string,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		users:       users,
		sessions:    sessions,
		tokens:      tokens,
		mailer:      mailer,
		lockout:     DefaultLockoutPolicy(),
		bcryptCost:  12,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the account in the verification-required flow: the user
// starts pending and unverified, and a 24h email token is mailed out.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (string, error) {
	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.DefaultRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	user := &model.User{
		ID:            uuid.NewString(),
		Username:      strings.TrimSpace(req.Username),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:  string(hash),
		Role:          role,
		Status:        model.StatusPending,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return "", apierror.New("ALREADY_EXISTS", "Username or email already registered", "", 409)
		}
		return "", err
	}

	s.sendVerificationEmail(user)

	return user.ID, nil
}

// Login sequences lockout check, hash comparison, token minting, and session
// creation. The lockout check runs before any bcrypt work: a locked account
// is rejected without touching the hash.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, meta model.SessionMetadata) (model.User, TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, TokenPair{}, apierror.InvalidCredentials()
		}
		return model.User{}, TokenPair{}, err
	}

	if user.Status == model.StatusInactive {
		// Deactivated accounts look exactly like bad credentials.
		return model.User{}, TokenPair{}, apierror.InvalidCredentials()
	}

	now := s.now()
	if user.Locked(now) {
		return model.User{}, TokenPair{}, apierror.Lockout(user.LockRemaining(now))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.User{}, TokenPair{}, s.recordFailure(ctx, user.ID)
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		if err := s.users.ResetLoginFailures(ctx, user.ID); err != nil {
			return model.User{}, TokenPair{}, err
		}
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}

	session := &model.Session{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserAgent:    meta.UserAgent,
		IPAddress:    meta.IPAddress,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return model.User{}, TokenPair{}, err
	}

	return user, pair, nil
}

func (s *AuthService) recordFailure(ctx context.Context, userID string) error {
	now := s.now()
	_, lockedUntil, err := s.users.RecordLoginFailure(ctx, userID, s.lockout.MaxAttempts, now.Add(s.lockout.Duration))
	if err != nil {
		return err
	}
	if lockedUntil != nil && lockedUntil.After(now) {
		u := model.User{LockedUntil: lockedUntil}
		return apierror.Lockout(u.LockRemaining(now))
	}
	return apierror.InvalidCredentials()
}

// Refresh rotates the session named by the refresh token. A token that
// verifies but matches no session row was already rotated or revoked and is
// rejected with SessionNotFound, never silently honored.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.User, TokenPair, error) {
	result := s.tokens.Verify(token.KindRefresh, refreshToken)
	if !result.Valid {
		return model.User{}, TokenPair{}, apierror.InvalidToken()
	}

	session, err := s.sessions.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return model.User{}, TokenPair{}, apierror.SessionNotFound()
		}
		return model.User{}, TokenPair{}, err
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, TokenPair{}, apierror.SessionNotFound()
		}
		return model.User{}, TokenPair{}, err
	}
	if user.Status == model.StatusInactive {
		return model.User{}, TokenPair{}, apierror.SessionNotFound()
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}

	if err := s.sessions.Rotate(ctx, session.ID, pair.AccessToken, pair.RefreshToken); err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return model.User{}, TokenPair{}, apierror.SessionNotFound()
		}
		return model.User{}, TokenPair{}, err
	}

	return user, pair, nil
}

// Logout deletes the session row. An unknown token is still swept
// defensively; the caller clears cookies either way.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.sessions.FindByRefreshToken(ctx, refreshToken)
	if err == nil {
		return s.sessions.Revoke(ctx, session.UserID, refreshToken)
	}
	if errors.Is(err, model.ErrSessionNotFound) {
		return s.sessions.RevokeByRefreshToken(ctx, refreshToken)
	}
	return err
}

// VerifyEmail flips a pending account to active. The token's email claim is
// echoed back so the frontend can show which address was confirmed.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenString string) (string, error) {
	result := s.tokens.Verify(token.KindEmail, tokenString)
	if !result.Valid {
		return "", apierror.InvalidToken()
	}

	if err := s.users.MarkEmailVerified(ctx, result.Claims.UserID); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return "", apierror.NotFound("User not found", "")
		}
		return "", err
	}

	email := result.Claims.Email
	if email == "" {
		if user, err := s.users.FindByID(ctx, result.Claims.UserID); err == nil {
			email = user.Email
		}
	}
	return email, nil
}

// ForgotPassword issues a reset token and stores it on the user row with the
// same expiry. Storing the token alongside the signed copy lets a reset be
// invalidated early by clearing the stored value.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return apierror.NotFound("User not found", "")
		}
		return err
	}

	resetToken, err := s.tokens.Issue(token.KindReset, token.Claims{UserID: user.ID})
	if err != nil {
		return err
	}

	expires := s.now().Add(token.KindReset.Lifetime())
	if err := s.users.SetResetToken(ctx, user.ID, resetToken, expires); err != nil {
		return err
	}

	s.sendPasswordResetEmail(user.Email, resetToken)

	return nil
}

// ResetPassword requires the token to verify AND to match the stored value
// AND the stored expiry to be in the future. Success rehashes the password,
// clears the stored reset fields, and revokes every session.
func (s *AuthService) ResetPassword(ctx context.Context, tokenString string, newPassword string) error {
	result := s.tokens.Verify(token.KindReset, tokenString)
	if !result.Valid {
		return apierror.InvalidToken()
	}

	user, err := s.users.FindByID(ctx, result.Claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return apierror.InvalidToken()
		}
		return err
	}

	now := s.now()
	if user.PasswordResetToken == "" ||
		user.PasswordResetToken != tokenString ||
		user.PasswordResetExpires == nil ||
		!user.PasswordResetExpires.After(now) {
		return apierror.InvalidToken()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	// A password change orphans every outstanding refresh token.
	return s.sessions.RevokeAllForUser(ctx, user.ID)
}

// VerifyAccess resolves an access token to its user; the auth middleware and
// the verify-token endpoint both go through here.
func (s *AuthService) VerifyAccess(ctx context.Context, accessToken string) (model.User, error) {
	result := s.tokens.Verify(token.KindAccess, accessToken)
	if !result.Valid {
		return model.User{}, apierror.InvalidToken()
	}

	user, err := s.users.FindByID(ctx, result.Claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, apierror.NotFound("User not found", "")
		}
		return model.User{}, err
	}
	return user, nil
}

func (s *AuthService) mintPair(user model.User) (TokenPair, error) {
	accessToken, err := s.tokens.Issue(token.KindAccess, token.Claims{
		UserID: user.ID,
		Role:   string(user.Role),
	})
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := s.tokens.Issue(token.KindRefresh, token.Claims{UserID: user.ID})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *AuthService) sendVerificationEmail(user *model.User) {
	if s.mailer == nil {
		return
	}

	emailToken, err := s.tokens.Issue(token.KindEmail, token.Claims{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		slog.Error("failed to issue verification token", "user_id", user.ID, "error", err)
		return
	}

	subject, body, err := mail.VerificationMessage(s.frontendURL, emailToken)
	if err != nil {
		slog.Error("failed to build verification email", "user_id", user.ID, "error", err)
		return
	}

	to := user.Email
	go func() {
		if err := s.mailer.Send(to, subject, body); err != nil {
			slog.Error("failed to send verification email", "error", err)
		}
	}()
}

func (s *AuthService) sendPasswordResetEmail(email string, resetToken string) {
	if s.mailer == nil {
		return
	}

	subject, body, err := mail.PasswordResetMessage(s.frontendURL, resetToken)
	if err != nil {
		slog.Error("failed to build password reset email", "error", err)
		return
	}

	go func() {
		if err := s.mailer.Send(email, subject, body); err != nil {
			slog.Error("failed to send password reset email", "error", err)
		}
	}()
}
