package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/vidora/vidora-backend/internal/apperr"
	"github.com/vidora/vidora-backend/internal/http/middleware"
	"github.com/vidora/vidora-backend/internal/http/response"
	"github.com/vidora/vidora-backend/internal/observability"
	"github.com/vidora/vidora-backend/internal/security"
	"github.com/vidora/vidora-backend/internal/service"
	"github.com/vidora/vidora-backend/internal/storage"
)

const oauthStateCookie = "oauthState"

type AuthHandler struct {
	auth       service.AuthServiceInterface
	oauth      service.OAuthServiceInterface
	media      storage.MediaStorage
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthHandler(
	auth service.AuthServiceInterface,
	oauth service.OAuthServiceInterface,
	media storage.MediaStorage,
	accessTTL, refreshTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{auth: auth, oauth: oauth, media: media, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Register accepts multipart form fields plus an optional avatar file,
// or a plain JSON body.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			response.FromError(w, r, apperr.Validation("malformed multipart body"))
			return
		}
		in.Username = r.FormValue("username")
		in.Email = r.FormValue("email")
		in.FullName = r.FormValue("fullName")
		in.Password = r.FormValue("password")
		if file, header, err := r.FormFile("avatar"); err == nil {
			defer file.Close()
			url, err := h.media.Upload(r.Context(), storage.ObjectKey("avatars", header.Filename), file, header.Header.Get("Content-Type"))
			if err != nil {
				response.FromError(w, r, apperr.Internal("upload avatar", err))
				return
			}
			in.AvatarURL = url
		}
	} else {
		var body struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			FullName string `json:"fullName"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.FromError(w, r, apperr.Validation("malformed json body"))
			return
		}
		in = service.RegisterInput{Username: body.Username, Email: body.Email, FullName: body.FullName, Password: body.Password}
	}

	profile, err := h.auth.Register(r.Context(), in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	observability.Audit(r, "auth.register", "username", profile.Username)
	response.JSON(w, r, http.StatusCreated, profile)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Identifier string `json:"identifier"`
		Username   string `json:"username"`
		Email      string `json:"email"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.FromError(w, r, apperr.Validation("malformed json body"))
		return
	}
	identifier := body.Identifier
	if identifier == "" {
		identifier = body.Username
	}
	if identifier == "" {
		identifier = body.Email
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{Identifier: identifier, Password: body.Password})
	if err != nil {
		observability.RecordAuthLogin("local", "failure")
		response.FromError(w, r, err)
		return
	}
	observability.RecordAuthLogin("local", "success")
	observability.Audit(r, "auth.login", "user_id", result.User.ID)
	security.SetAuthCookies(w, result.Pair.AccessToken, result.Pair.RefreshToken, h.accessTTL, h.refreshTTL)
	response.JSON(w, r, http.StatusOK, result)
}

// Refresh reads the refresh token from the refreshToken cookie, falling
// back to the refreshToken body field.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := security.GetCookie(r, security.RefreshTokenCookie)
	if raw == "" && r.Body != nil {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		raw = body.RefreshToken
	}

	result, err := h.auth.Refresh(r.Context(), raw)
	if err != nil {
		observability.RecordAuthRefresh("failure")
		response.FromError(w, r, err)
		return
	}
	observability.RecordAuthRefresh("success")
	security.SetAuthCookies(w, result.Pair.AccessToken, result.Pair.RefreshToken, h.accessTTL, h.refreshTTL)
	response.JSON(w, r, http.StatusOK, result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, r, apperr.Unauthenticated("not signed in"))
		return
	}
	if err := h.auth.Logout(r.Context(), user.ID); err != nil {
		observability.RecordAuthLogout("failure")
		response.FromError(w, r, err)
		return
	}
	observability.RecordAuthLogout("success")
	observability.Audit(r, "auth.logout", "user_id", user.ID)
	security.ClearAuthCookies(w)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, r, apperr.Unauthenticated("not signed in"))
		return
	}
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.FromError(w, r, apperr.Validation("malformed json body"))
		return
	}
	if err := h.auth.ChangePassword(r.Context(), user.ID, body.CurrentPassword, body.NewPassword); err != nil {
		response.FromError(w, r, err)
		return
	}
	// Changing the secret revokes the stored refresh token, so the
	// session cookies are cleared as well.
	observability.Audit(r, "auth.change_password", "user_id", user.ID)
	security.ClearAuthCookies(w)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "password changed"})
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		response.FromError(w, r, apperr.Internal("generate state", err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.oauth.LoginURL(state), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		observability.RecordAuthLogin("google", "state_mismatch")
		response.FromError(w, r, apperr.Unauthenticated("oauth state mismatch"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: true})

	result, err := h.oauth.HandleGoogleCallback(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		observability.RecordAuthLogin("google", "failure")
		response.FromError(w, r, err)
		return
	}
	observability.RecordAuthLogin("google", "success")
	observability.Audit(r, "auth.login.google", "user_id", result.User.ID)
	security.SetAuthCookies(w, result.Pair.AccessToken, result.Pair.RefreshToken, h.accessTTL, h.refreshTTL)
	response.JSON(w, r, http.StatusOK, result)
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
