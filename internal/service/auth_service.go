package service

import (
	"context"
	"errors"
	"strings"

	"github.com/vidora/vidora-backend/internal/apperr"
	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/repository"
	"github.com/vidora/vidora-backend/internal/security"
)

type RegisterInput struct {
	Username  string
	Email     string
	FullName  string
	Password  string
	AvatarURL string
}

type LoginInput struct {
	// Identifier is the handle or the email address; either may match.
	Identifier string
	Password   string
}

type LoginResult struct {
	User domain.PublicProfile `json:"user"`
	Pair TokenPair            `json:"tokens"`
}

type AuthService struct {
	users  repository.UserRepository
	tokens *TokenService
}

func NewAuthService(users repository.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.PublicProfile, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("username, email and password are required")
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, apperr.Conflict("username already taken")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.Internal("check username", err)
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.Internal("check email", err)
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		AvatarURL:    in.AvatarURL,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.Internal("create user", err)
	}
	profile := user.Public()
	return &profile, nil
}

// Login exchanges identity + plaintext secret for a fresh credential pair.
// "Unknown user" and "wrong password" are reported distinctly; unifying them
// is a policy decision deliberately left open.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if strings.TrimSpace(in.Identifier) == "" || in.Password == "" {
		return nil, apperr.Validation("identifier and password are required")
	}
	user, err := s.users.FindByIdentity(ctx, strings.TrimSpace(in.Identifier))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("user does not exist")
		}
		return nil, apperr.Internal("find user", err)
	}
	if !security.VerifyPassword(in.Password, user.PasswordHash) {
		return nil, apperr.InvalidCredential("invalid user credentials")
	}
	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user.Public(), Pair: pair}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	return s.tokens.Revoke(ctx, userID)
}

func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*LoginResult, error) {
	user, pair, err := s.tokens.Rotate(ctx, rawRefresh)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user.Public(), Pair: pair}, nil
}

// ChangePassword verifies the current secret, then replaces the stored hash.
// The same write clears the stored refresh token, so a password change ends
// the active session and outstanding refresh tokens stop working.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("current and new passwords are required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user no longer exists")
		}
		return apperr.Internal("find user", err)
	}
	if !security.VerifyPassword(current, user.PasswordHash) {
		return apperr.InvalidCredential("current password is incorrect")
	}
	hash, err := security.HashPassword(next)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return apperr.Internal("update password", err)
	}
	return nil
}
