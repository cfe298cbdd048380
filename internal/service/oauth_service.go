package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/vidora/vidora-backend/internal/apperr"
	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/repository"
	"github.com/vidora/vidora-backend/internal/security"
)

const googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

type OAuthUserInfo struct {
	ProviderUserID string `json:"sub"`
	Email          string `json:"email"`
	EmailVerified  bool   `json:"email_verified"`
	Name           string `json:"name"`
	Picture        string `json:"picture"`
}

type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUserInfo, error)
}

type GoogleOAuthProvider struct {
	cfg *oauth2.Config
}

func NewGoogleOAuthProvider(clientID, clientSecret, redirectURL string) *GoogleOAuthProvider {
	return &GoogleOAuthProvider{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}}
}

func (p *GoogleOAuthProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GoogleOAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.cfg.Exchange(ctx, code)
}

func (p *GoogleOAuthProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUserInfo, error) {
	resp, err := p.cfg.Client(ctx, token).Get(googleUserinfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status: %d", resp.StatusCode)
	}
	var info OAuthUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// OAuthService signs users in through an external identity provider.
// Provisioned accounts get a random unusable password; credential issuance
// then follows the normal token path.
type OAuthService struct {
	provider OAuthProvider
	users    repository.UserRepository
	tokens   *TokenService
}

func NewOAuthService(provider OAuthProvider, users repository.UserRepository, tokens *TokenService) *OAuthService {
	return &OAuthService{provider: provider, users: users, tokens: tokens}
}

func (s *OAuthService) LoginURL(state string) string {
	return s.provider.AuthCodeURL(state)
}

func (s *OAuthService) HandleGoogleCallback(ctx context.Context, code string) (*LoginResult, error) {
	token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	info, err := s.provider.FetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	if !info.EmailVerified {
		return nil, errors.New("google email not verified")
	}

	user, err := s.users.FindByEmail(ctx, info.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.Internal("find user", err)
		}
		user, err = s.provision(ctx, info)
		if err != nil {
			return nil, err
		}
	}
	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user.Public(), Pair: pair}, nil
}

func (s *OAuthService) provision(ctx context.Context, info *OAuthUserInfo) (*domain.User, error) {
	// Sign-in only ever happens through the provider for these accounts;
	// the random password exists so the hash column is never empty.
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, apperr.Internal("generate password", err)
	}
	hash, err := security.HashPassword(hex.EncodeToString(secret))
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	username, err := s.deriveUsername(ctx, info.Email)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username:     username,
		Email:        info.Email,
		FullName:     info.Name,
		AvatarURL:    info.Picture,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.Internal("create user", err)
	}
	return user, nil
}

func (s *OAuthService) deriveUsername(ctx context.Context, email string) (string, error) {
	base := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	base = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, base)
	if base == "" {
		base = "user"
	}
	candidate := base
	for i := 0; i < 10; i++ {
		_, err := s.users.FindByUsername(ctx, candidate)
		if errors.Is(err, repository.ErrUserNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", apperr.Internal("check username", err)
		}
		candidate = fmt.Sprintf("%s-%d", base, i+1)
	}
	return "", apperr.Conflict("could not derive a free username")
}
