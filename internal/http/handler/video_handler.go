package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vidora/vidora-backend/internal/apperr"
	"github.com/vidora/vidora-backend/internal/http/middleware"
	"github.com/vidora/vidora-backend/internal/http/response"
	"github.com/vidora/vidora-backend/internal/service"
)

type VideoHandler struct {
	videos service.VideoServiceInterface
}

func NewVideoHandler(videos service.VideoServiceInterface) *VideoHandler {
	return &VideoHandler{videos: videos}
}

// Publish accepts a multipart upload: title, description, duration
// fields plus a video file and an optional thumbnail.
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, r, apperr.Unauthenticated("not signed in"))
		return
	}
	if err := r.ParseMultipartForm(512 << 20); err != nil {
		response.FromError(w, r, apperr.Validation("malformed multipart body"))
		return
	}
	in := service.PublishVideoInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if raw := r.FormValue("duration"); raw != "" {
		if d, err := strconv.ParseFloat(raw, 64); err == nil {
			in.Duration = d
		}
	}
	if file, header, err := r.FormFile("video"); err == nil {
		defer file.Close()
		in.VideoFilename = header.Filename
		in.VideoBody = file
		in.VideoContentType = header.Header.Get("Content-Type")
	}
	if file, header, err := r.FormFile("thumbnail"); err == nil {
		defer file.Close()
		in.ThumbnailFilename = header.Filename
		in.ThumbnailBody = file
		in.ThumbnailContentType = header.Header.Get("Content-Type")
	}

	video, err := h.videos.Publish(r.Context(), user.ID, in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, video)
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	var viewerID uint
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		viewerID = user.ID
	}
	video, err := h.videos.Get(r.Context(), id, viewerID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, video)
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, r, apperr.Unauthenticated("not signed in"))
		return
	}
	id, err := videoID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	if err := h.videos.Delete(r.Context(), user.ID, id); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

func videoID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid video id")
	}
	return uint(id), nil
}
