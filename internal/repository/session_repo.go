package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MedSupply-Manager/user-service/internal/model"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, access_token, refresh_token, user_agent, ip_address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, s.AccessToken, s.RefreshToken, s.UserAgent, s.IPAddress, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindByRefreshToken is an exact-match lookup: a token that was rotated away
// no longer matches any row, which is what makes replay fail.
func (r *SessionRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (model.Session, error) {
	var s model.Session
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, access_token, refresh_token, user_agent, ip_address, created_at, updated_at
		 FROM sessions WHERE refresh_token = $1`, refreshToken).
		Scan(&s.ID, &s.UserID, &s.AccessToken, &s.RefreshToken, &s.UserAgent, &s.IPAddress, &s.CreatedAt, &s.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Session{}, model.ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("find session by refresh token: %w", err)
	}
	return s, nil
}

// Rotate overwrites both token fields on the existing row. The old refresh
// token is invalid the moment this commits.
func (r *SessionRepository) Rotate(ctx context.Context, sessionID string, accessToken string, refreshToken string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions SET access_token = $2, refresh_token = $3, updated_at = $4 WHERE id = $1`,
		sessionID, accessToken, refreshToken, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) Revoke(ctx context.Context, userID string, refreshToken string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE user_id = $1 AND refresh_token = $2`,
		userID, refreshToken)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeByRefreshToken removes any row matching the token regardless of
// owner; logout uses it defensively when the session lookup came up empty.
func (r *SessionRepository) RevokeByRefreshToken(ctx context.Context, refreshToken string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE refresh_token = $1`, refreshToken)
	if err != nil {
		return fmt.Errorf("revoke session by refresh token: %w", err)
	}
	return nil
}

func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("revoke all sessions: %w", err)
	}
	return nil
}

// DeleteStale removes sessions whose refresh token has certainly expired;
// run periodically so dead rows do not pile up.
func (r *SessionRepository) DeleteStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
