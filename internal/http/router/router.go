package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vidora/vidora-backend/internal/health"
	"github.com/vidora/vidora-backend/internal/http/handler"
	"github.com/vidora/vidora-backend/internal/http/middleware"
	"github.com/vidora/vidora-backend/internal/http/response"
)

type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	ChannelHandler *handler.ChannelHandler
	VideoHandler   *handler.VideoHandler

	Authenticator middleware.Authenticator

	CORSOrigins      []string
	AuthRateLimitRPM int
	APIRateLimitRPM  int
	MaxBodyBytes     int64

	GlobalRateLimiter func(http.Handler) http.Handler
	AuthRateLimiter   func(http.Handler) http.Handler

	Readiness      *health.ProbeRunner
	EnableOTelHTTP bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	maxBody := dep.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	if dep.GlobalRateLimiter != nil {
		r.Use(dep.GlobalRateLimiter)
	} else {
		r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())
	}

	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute).Middleware()
	}
	bodyLimit := middleware.BodyLimit(maxBody)
	requireAuth := middleware.AuthMiddleware(dep.Authenticator)
	optionalAuth := middleware.OptionalAuthMiddleware(dep.Authenticator)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
			r.With(authLimiter, bodyLimit).Post("/login", dep.AuthHandler.Login)
			r.With(authLimiter, bodyLimit).Post("/refresh", dep.AuthHandler.Refresh)
			r.With(requireAuth).Post("/logout", dep.AuthHandler.Logout)
			r.With(requireAuth, authLimiter, bodyLimit).Post("/change-password", dep.AuthHandler.ChangePassword)
			r.With(authLimiter).Get("/google/login", dep.AuthHandler.GoogleLogin)
			r.With(authLimiter).Get("/google/callback", dep.AuthHandler.GoogleCallback)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", dep.UserHandler.Me)
			r.With(bodyLimit).Patch("/me", dep.UserHandler.UpdateMe)
			r.Patch("/me/avatar", dep.UserHandler.UpdateAvatar)
			r.Patch("/me/cover", dep.UserHandler.UpdateCoverImage)
			r.Get("/me/history", dep.UserHandler.WatchHistory)
			r.Delete("/me/history", dep.UserHandler.ClearWatchHistory)
			r.Get("/me/subscriptions", dep.ChannelHandler.Subscriptions)
		})

		r.Route("/channels/{username}", func(r chi.Router) {
			r.With(optionalAuth).Get("/", dep.ChannelHandler.Profile)
			r.With(requireAuth).Post("/subscribe", dep.ChannelHandler.ToggleSubscription)
			r.Get("/subscribers", dep.ChannelHandler.Subscribers)
			r.Get("/videos", dep.ChannelHandler.Videos)
		})

		r.Route("/videos", func(r chi.Router) {
			r.With(requireAuth).Post("/", dep.VideoHandler.Publish)
			r.With(optionalAuth).Get("/{id}", dep.VideoHandler.Get)
			r.With(requireAuth).Delete("/{id}", dep.VideoHandler.Delete)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
