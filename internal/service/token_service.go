package service

import (
	"context"
	"errors"
	"time"

	"github.com/vidora/vidora-backend/internal/apperr"
	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/repository"
	"github.com/vidora/vidora-backend/internal/security"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService owns the session lifecycle: it mints access/refresh pairs,
// authenticates access tokens, rotates refresh tokens and revokes sessions.
// The single stored refresh token per user is the revocation mechanism:
// whatever overwrites it (login, rotation, logout, password change)
// invalidates every previously issued refresh token for that user.
type TokenService struct {
	jwtMgr     *security.JWTManager
	users      repository.UserRepository
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(jwtMgr *security.JWTManager, users repository.UserRepository, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{jwtMgr: jwtMgr, users: users, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// Issue mints a fresh pair for the user and persists the refresh token,
// overwriting any prior value (single active session per user).
func (s *TokenService) Issue(ctx context.Context, user *domain.User) (TokenPair, error) {
	access, err := s.jwtMgr.SignAccessToken(user.ID, user.Username, s.accessTTL)
	if err != nil {
		return TokenPair{}, apperr.Internal("sign access token", err)
	}
	refresh, err := s.jwtMgr.SignRefreshToken(user.ID, s.refreshTTL)
	if err != nil {
		return TokenPair{}, apperr.Internal("sign refresh token", err)
	}
	if err := s.users.PersistRefreshToken(ctx, user.ID, &refresh); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return TokenPair{}, apperr.NotFound("user no longer exists")
		}
		return TokenPair{}, apperr.Internal("persist refresh token", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Authenticate is the access-token gate: it verifies signature and expiry,
// then loads the principal with secret columns omitted from the projection.
// It has no side effects; every failure is terminal for the request.
func (s *TokenService) Authenticate(ctx context.Context, rawAccess string) (*domain.User, error) {
	if rawAccess == "" {
		return nil, apperr.Unauthenticated("missing access token")
	}
	claims, err := s.jwtMgr.ParseAccessToken(rawAccess)
	if err != nil {
		return nil, apperr.InvalidCredential("invalid access token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperr.InvalidCredential("invalid access token")
	}
	user, err := s.users.FindByIDProjected(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound("user no longer exists")
		}
		return nil, apperr.Internal("load user", err)
	}
	return user, nil
}

// Rotate exchanges a still-valid refresh token for a new pair. The linear
// state machine maps each failure to a distinct rejection; the equality
// check against the stored value is what makes logout and prior rotations
// stick even for cryptographically valid, unexpired tokens.
func (s *TokenService) Rotate(ctx context.Context, rawRefresh string) (*domain.User, TokenPair, error) {
	if rawRefresh == "" {
		return nil, TokenPair{}, apperr.MissingRefreshToken("missing refresh token")
	}
	claims, err := s.jwtMgr.ParseRefreshToken(rawRefresh)
	if err != nil {
		return nil, TokenPair{}, apperr.InvalidRefreshToken("invalid or expired refresh token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, TokenPair{}, apperr.InvalidRefreshToken("invalid or expired refresh token")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, TokenPair{}, apperr.NotFound("user no longer exists")
		}
		return nil, TokenPair{}, apperr.Internal("load user", err)
	}
	if user.RefreshToken == nil || *user.RefreshToken != rawRefresh {
		return nil, TokenPair{}, apperr.RefreshTokenMismatch("refresh token is no longer valid")
	}
	pair, err := s.Issue(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Revoke clears the stored refresh token, which immediately invalidates any
// outstanding refresh credential for the user regardless of its expiry.
func (s *TokenService) Revoke(ctx context.Context, userID uint) error {
	if err := s.users.PersistRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user no longer exists")
		}
		return apperr.Internal("clear refresh token", err)
	}
	return nil
}
