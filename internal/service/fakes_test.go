package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MedSupply-Manager/user-service/internal/model"
)

// fakeUserStore mirrors the pgx repository's semantics in memory, including
// the atomic increment-and-maybe-lock of RecordLoginFailure.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, u.Email) || existing.Username == u.Username {
			return model.ErrUserAlreadyExists
		}
	}

	clone := *u
	f.users[u.ID] = &clone
	return nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return *u, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return *u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (f *fakeUserStore) List(ctx context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) Update(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.users[u.ID]
	if !ok {
		return model.ErrUserNotFound
	}

	for id, other := range f.users {
		if id == u.ID {
			continue
		}
		if strings.EqualFold(other.Email, u.Email) || other.Username == u.Username {
			return model.ErrUserAlreadyExists
		}
	}

	*existing = *u
	return nil
}

func (f *fakeUserStore) Deactivate(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.Status = model.StatusInactive
	return nil
}

func (f *fakeUserStore) RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockUntil time.Time) (int, *time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return 0, nil, model.ErrUserNotFound
	}

	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		until := lockUntil
		u.LockedUntil = &until
	}
	return u.FailedLoginAttempts, u.LockedUntil, nil
}

func (f *fakeUserStore) ResetLoginFailures(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	return nil
}

func (f *fakeUserStore) MarkEmailVerified(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.EmailVerified = true
	if u.Status == model.StatusPending {
		u.Status = model.StatusActive
	}
	return nil
}

func (f *fakeUserStore) SetResetToken(ctx context.Context, id string, resetToken string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordResetToken = resetToken
	exp := expires
	u.PasswordResetExpires = &exp
	return nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
	return nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionStore) Create(ctx context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	clone := *s
	f.sessions[s.ID] = &clone
	return nil
}

func (f *fakeSessionStore) FindByRefreshToken(ctx context.Context, refreshToken string) (model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.sessions {
		if s.RefreshToken == refreshToken {
			return *s, nil
		}
	}
	return model.Session{}, model.ErrSessionNotFound
}

func (f *fakeSessionStore) Rotate(ctx context.Context, sessionID string, accessToken string, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[sessionID]
	if !ok {
		return model.ErrSessionNotFound
	}
	s.AccessToken = accessToken
	s.RefreshToken = refreshToken
	s.UpdatedAt = time.Now()
	return nil
}

func (f *fakeSessionStore) Revoke(ctx context.Context, userID string, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, s := range f.sessions {
		if s.UserID == userID && s.RefreshToken == refreshToken {
			delete(f.sessions, id)
		}
	}
	return nil
}

func (f *fakeSessionStore) RevokeByRefreshToken(ctx context.Context, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, s := range f.sessions {
		if s.RefreshToken == refreshToken {
			delete(f.sessions, id)
		}
	}
	return nil
}

func (f *fakeSessionStore) RevokeAllForUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, id)
		}
	}
	return nil
}

func (f *fakeSessionStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}
