package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/vidora/vidora-backend/internal/apperr"
	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/http/middleware"
	"github.com/vidora/vidora-backend/internal/http/response"
	"github.com/vidora/vidora-backend/internal/service"
)

type UserHandler struct {
	users service.UserServiceInterface
}

func NewUserHandler(users service.UserServiceInterface) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, r, apperr.Unauthenticated("not signed in"))
		return
	}
	response.JSON(w, r, http.StatusOK, user.Public())
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, r, apperr.Unauthenticated("not signed in"))
		return
	}
	var body struct {
		FullName *string `json:"fullName"`
		Email    *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.FromError(w, r, apperr.Validation("malformed json body"))
		return
	}
	profile, err := h.users.UpdateAccount(r.Context(), user.ID, service.UpdateAccountInput{FullName: body.FullName, Email: body.Email})
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, profile)
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.users.UpdateAvatar)
}

func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.users.UpdateCoverImage)
}

type imageUpdateFunc func(ctx context.Context, userID uint, filename string, body io.Reader, contentType string) (*domain.PublicProfile, error)

func (h *UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdateFunc) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, r, apperr.Unauthenticated("not signed in"))
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		response.FromError(w, r, apperr.Validation("malformed multipart body"))
		return
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		response.FromError(w, r, apperr.Validation(field+" file is required"))
		return
	}
	defer file.Close()

	profile, err := update(r.Context(), user.ID, header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, profile)
}

func (h *UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, r, apperr.Unauthenticated("not signed in"))
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	entries, err := h.users.WatchHistory(r.Context(), user.ID, limit)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, entries)
}

func (h *UserHandler) ClearWatchHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, r, apperr.Unauthenticated("not signed in"))
		return
	}
	removed, err := h.users.ClearWatchHistory(r.Context(), user.ID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]int64{"removed": removed})
}
