package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MedSupply-Manager/user-service/internal/config"
	"github.com/MedSupply-Manager/user-service/internal/handler"
	"github.com/MedSupply-Manager/user-service/internal/middleware"
	"github.com/MedSupply-Manager/user-service/internal/model"
	"github.com/MedSupply-Manager/user-service/internal/router"
	"github.com/MedSupply-Manager/user-service/internal/service"
	"github.com/MedSupply-Manager/user-service/internal/token"
)

// memUserStore and memSessionStore stand in for the pgx repositories so the
// full HTTP stack can be exercised without Postgres.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*model.User)}
}

func (m *memUserStore) Create(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) || existing.Username == u.Username {
			return model.ErrUserAlreadyExists
		}
	}
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

func (m *memUserStore) FindByID(ctx context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return *u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (m *memUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return *u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (m *memUserStore) List(ctx context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memUserStore) Update(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[u.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	for id, other := range m.users {
		if id != u.ID && (strings.EqualFold(other.Email, u.Email) || other.Username == u.Username) {
			return model.ErrUserAlreadyExists
		}
	}
	*existing = *u
	return nil
}

func (m *memUserStore) Deactivate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.Status = model.StatusInactive
	return nil
}

func (m *memUserStore) RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockUntil time.Time) (int, *time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
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

func (m *memUserStore) ResetLoginFailures(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	return nil
}

func (m *memUserStore) MarkEmailVerified(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.EmailVerified = true
	if u.Status == model.StatusPending {
		u.Status = model.StatusActive
	}
	return nil
}

func (m *memUserStore) SetResetToken(ctx context.Context, id string, resetToken string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordResetToken = resetToken
	exp := expires
	u.PasswordResetExpires = &exp
	return nil
}

func (m *memUserStore) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
	return nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*model.Session)}
}

func (m *memSessionStore) Create(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *s
	m.sessions[s.ID] = &clone
	return nil
}

func (m *memSessionStore) FindByRefreshToken(ctx context.Context, refreshToken string) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.RefreshToken == refreshToken {
			return *s, nil
		}
	}
	return model.Session{}, model.ErrSessionNotFound
}

func (m *memSessionStore) Rotate(ctx context.Context, sessionID string, accessToken string, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return model.ErrSessionNotFound
	}
	s.AccessToken = accessToken
	s.RefreshToken = refreshToken
	return nil
}

func (m *memSessionStore) Revoke(ctx context.Context, userID string, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.UserID == userID && s.RefreshToken == refreshToken {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *memSessionStore) RevokeByRefreshToken(ctx context.Context, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.RefreshToken == refreshToken {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *memSessionStore) RevokeAllForUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

type testServer struct {
	*httptest.Server
	users    *memUserStore
	sessions *memSessionStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := newMemUserStore()
	sessions := newMemSessionStore()
	issuer := token.NewIssuer(token.Secrets{
		Access:  "access-secret",
		Refresh: "refresh-secret",
		Email:   "email-secret",
		Reset:   "reset-secret",
	})

	authService := service.NewAuthService(users, sessions, issuer, nil, "http://localhost:5173",
		service.WithBcryptCost(bcrypt.MinCost))
	userService := service.NewUserService(users, sessions)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService, false)
	userHandler := handler.NewUserHandler(userService)

	cfg := &config.Config{
		RequestTimeout:   5 * time.Second,
		RateLimitRPM:     10000,
		AuthRateLimitRPM: 10000,
	}

	srv := httptest.NewServer(router.New(cfg, authMiddleware, authHandler, userHandler))
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, users: users, sessions: sessions}
}

// seed inserts an active user directly, bypassing the verification flow.
func (ts *testServer) seed(t *testing.T, username string, email string, password string, role model.Role) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &model.User{
		ID:            username + "-id",
		Username:      username,
		Email:         email,
		PasswordHash:  string(hash),
		Role:          role,
		Status:        model.StatusActive,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, ts.users.Create(context.Background(), user))
	return user.ID
}

func (ts *testServer) postJSON(t *testing.T, path string, payload any, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (ts *testServer) get(t *testing.T, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (ts *testServer) login(t *testing.T, email string, password string) (access *http.Cookie, refresh *http.Cookie) {
	t.Helper()

	resp := ts.postJSON(t, "/api/users/login", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		switch c.Name {
		case "accessToken":
			access = c
		case "refreshToken":
			refresh = c
		}
	}
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	return access, refresh
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return out
}
