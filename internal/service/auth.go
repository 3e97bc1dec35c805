package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-go/internal/apperror"
	"github.com/taskflow/taskflow-go/internal/crypto"
	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/repository"
)

// AuthService handles registration, login and the refresh-token session.
// A user has at most one live refresh token: login and refresh overwrite it,
// logout clears it.
type AuthService struct {
	users  UserStore
	tokens *crypto.TokenService
	hasher *crypto.PasswordHasher
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *crypto.TokenService, hasher *crypto.PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
	}
}

// Register creates a new user account and starts its session.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResult, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return model.AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.AuthResult{}, apperror.Internal(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResult{}, apperror.Internal(err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
	}

	access, refresh, err := s.issuePair(user)
	if err != nil {
		return model.AuthResult{}, err
	}
	user.RefreshToken = &refresh

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResult{}, ErrEmailTaken
		}
		return model.AuthResult{}, apperror.Internal(err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return authResult(user, access, refresh), nil
}

// Login authenticates a user and replaces any previous session. Unknown
// email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResult{}, ErrInvalidCredentials
		}
		return model.AuthResult{}, apperror.Internal(err)
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResult{}, apperror.Internal(err)
	}
	if !match {
		return model.AuthResult{}, ErrInvalidCredentials
	}

	access, refresh, err := s.issuePair(user)
	if err != nil {
		return model.AuthResult{}, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return model.AuthResult{}, apperror.Internal(err)
	}

	return authResult(user, access, refresh), nil
}

// Refresh exchanges the stored refresh token for a new pair. The presented
// token must be the one currently stored; once exchanged it is dead.
func (s *AuthService) Refresh(ctx context.Context, presented string) (model.AuthResult, error) {
	if presented == "" {
		return model.AuthResult{}, ErrMissingRefreshToken
	}

	claims, err := s.tokens.Verify(presented, crypto.RefreshToken)
	if err != nil {
		return model.AuthResult{}, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResult{}, ErrInvalidRefreshToken
		}
		return model.AuthResult{}, apperror.Internal(err)
	}
	if user.RefreshToken == nil || *user.RefreshToken != presented {
		slog.Warn("refresh token reuse rejected", "user_id", user.ID)
		return model.AuthResult{}, ErrInvalidRefreshToken
	}

	access, refresh, err := s.issuePair(user)
	if err != nil {
		return model.AuthResult{}, err
	}

	if err := s.users.RotateRefreshToken(ctx, user.ID, presented, refresh); err != nil {
		if errors.Is(err, repository.ErrStaleRefreshToken) {
			slog.Warn("concurrent refresh lost rotation", "user_id", user.ID)
			return model.AuthResult{}, ErrInvalidRefreshToken
		}
		return model.AuthResult{}, apperror.Internal(err)
	}

	return authResult(user, access, refresh), nil
}

// Logout revokes the user's refresh token. It is idempotent.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *AuthService) issuePair(user *model.User) (string, string, error) {
	access, err := s.tokens.IssueAccess(user.ID, user.Email)
	if err != nil {
		return "", "", apperror.Internal(err)
	}
	refresh, err := s.tokens.IssueRefresh(user.ID, user.Email)
	if err != nil {
		return "", "", apperror.Internal(err)
	}
	return access, refresh, nil
}

func authResult(user *model.User, access, refresh string) model.AuthResult {
	return model.AuthResult{
		User:         user.ToResponse(),
		AccessToken:  access,
		RefreshToken: refresh,
	}
}
