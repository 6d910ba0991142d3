package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/MedSupply-Manager/user-service/internal/model"
	"github.com/MedSupply-Manager/user-service/pkg/apierror"
)

// UserService backs the admin user-CRUD surface.
type UserService struct {
	users    UserStore
	sessions SessionStore
}

func NewUserService(users UserStore, sessions SessionStore) *UserService {
	return &UserService{users: users, sessions: sessions}
}

func (s *UserService) List(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.PublicUser{}, apierror.NotFound("User not found", id)
		}
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) Update(ctx context.Context, id string, req model.UpdateUserRequest) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.PublicUser{}, apierror.NotFound("User not found", id)
		}
		return model.PublicUser{}, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = model.Role(*req.Role)
	}
	if req.Status != nil {
		user.Status = model.Status(*req.Status)
	}
	if req.EmailVerified != nil {
		user.EmailVerified = *req.EmailVerified
	}

	if err := s.users.Update(ctx, &user); err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.PublicUser{}, apierror.New("ALREADY_EXISTS", "Username or email already taken", "", http.StatusConflict)
		}
		if errors.Is(err, model.ErrUserNotFound) {
			return model.PublicUser{}, apierror.NotFound("User not found", id)
		}
		return model.PublicUser{}, err
	}

	// Dropping an account to inactive kills its outstanding refresh tokens.
	if user.Status == model.StatusInactive {
		if err := s.sessions.RevokeAllForUser(ctx, user.ID); err != nil {
			return model.PublicUser{}, err
		}
	}

	return user.Public(), nil
}

// Deactivate is the soft delete: the row stays, status flips to inactive,
// and every session for the user is revoked.
func (s *UserService) Deactivate(ctx context.Context, id string, actorID string) error {
	if id == actorID {
		return apierror.New("BAD_REQUEST", "Cannot delete your own account", "", http.StatusBadRequest)
	}

	if err := s.users.Deactivate(ctx, id); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return apierror.NotFound("User not found", id)
		}
		return err
	}

	return s.sessions.RevokeAllForUser(ctx, id)
}
