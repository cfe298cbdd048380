package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidora/vidora-backend/internal/apperr"
	"github.com/vidora/vidora-backend/internal/http/middleware"
	"github.com/vidora/vidora-backend/internal/http/response"
	"github.com/vidora/vidora-backend/internal/service"
)

type ChannelHandler struct {
	users  service.UserServiceInterface
	subs   service.SubscriptionServiceInterface
	videos service.VideoServiceInterface
}

func NewChannelHandler(
	users service.UserServiceInterface,
	subs service.SubscriptionServiceInterface,
	videos service.VideoServiceInterface,
) *ChannelHandler {
	return &ChannelHandler{users: users, subs: subs, videos: videos}
}

// Profile is viewer-aware: a signed-in viewer additionally sees whether
// they are subscribed to the channel.
func (h *ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	var viewerID uint
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		viewerID = user.ID
	}
	profile, err := h.users.ChannelProfile(r.Context(), chi.URLParam(r, "username"), viewerID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, profile)
}

func (h *ChannelHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, r, apperr.Unauthenticated("not signed in"))
		return
	}
	subscribed, err := h.subs.Toggle(r.Context(), user.ID, chi.URLParam(r, "username"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]bool{"subscribed": subscribed})
}

func (h *ChannelHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.subs.Subscribers(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, profiles)
}

func (h *ChannelHandler) Videos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.videos.ListByChannel(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, videos)
}

func (h *ChannelHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, r, apperr.Unauthenticated("not signed in"))
		return
	}
	profiles, err := h.subs.SubscribedChannels(r.Context(), user.ID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, profiles)
}
