package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vidora/vidora-backend/internal/app"
	"github.com/vidora/vidora-backend/internal/config"
	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/health"
	"github.com/vidora/vidora-backend/internal/http/handler"
	"github.com/vidora/vidora-backend/internal/http/router"
	"github.com/vidora/vidora-backend/internal/observability"
	"github.com/vidora/vidora-backend/internal/repository"
	"github.com/vidora/vidora-backend/internal/security"
	"github.com/vidora/vidora-backend/internal/service"
	"github.com/vidora/vidora-backend/internal/storage"
	"github.com/vidora/vidora-backend/internal/tools/common"
	"github.com/vidora/vidora-backend/internal/tools/loadgen"
	"github.com/vidora/vidora-backend/internal/tools/ui"
)

func main() {
	root := &cobra.Command{
		Use:   "vidora",
		Short: "Video sharing backend",
	}
	root.AddCommand(serveCommand(), loadgenCommand())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := common.LoadEnvFile(envFile); err != nil {
				return err
			}
			return serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional env file to load")
	return cmd
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logger, loggerProvider, err := observability.InitLogging(ctx, cfg)
	if err != nil {
		return err
	}
	runtime, err := observability.InitRuntime(ctx, cfg, logger, loggerProvider)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Video{},
		&domain.Subscription{},
		&domain.WatchHistoryEntry{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	readiness := health.NewProbeRunner(5 * time.Second)
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	readiness.Register("database", func(ctx context.Context) error {
		return sqlDB.PingContext(ctx)
	})

	var statsCache service.ChannelStatsCache = service.NewInMemoryChannelStatsCache()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		statsCache = service.NewRedisChannelStatsCache(rdb, "")
		readiness.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	var media storage.MediaStorage
	if cfg.S3Bucket != "" {
		media, err = storage.NewS3MediaStorage(ctx, cfg)
		if err != nil {
			return fmt.Errorf("init media storage: %w", err)
		}
	} else {
		logger.Warn("S3_BUCKET not set, media uploads are kept in memory")
		media = storage.NewInMemoryMediaStorage()
	}

	users := repository.NewUserRepository(db)
	videos := repository.NewVideoRepository(db)
	subs := repository.NewSubscriptionRepository(db)
	watchHistory := repository.NewWatchHistoryRepository(db)

	jwtMgr := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	tokenSvc := service.NewTokenService(jwtMgr, users, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authSvc := service.NewAuthService(users, tokenSvc)
	oauthSvc := service.NewOAuthService(
		service.NewGoogleOAuthProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
		users,
		tokenSvc,
	)
	userSvc := service.NewUserService(users, subs, watchHistory, media, statsCache)
	subSvc := service.NewSubscriptionService(users, subs, statsCache)
	videoSvc := service.NewVideoService(videos, users, watchHistory, media)

	h := router.NewRouter(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc, oauthSvc, media, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		UserHandler:      handler.NewUserHandler(userSvc),
		ChannelHandler:   handler.NewChannelHandler(userSvc, subSvc, videoSvc),
		VideoHandler:     handler.NewVideoHandler(videoSvc),
		Authenticator:    tokenSvc,
		CORSOrigins:      cfg.CORSOrigins,
		AuthRateLimitRPM: cfg.AuthRateLimitRPM,
		APIRateLimitRPM:  cfg.APIRateLimitRPM,
		MaxBodyBytes:     cfg.MaxBodyBytes,
		Readiness:        readiness,
		EnableOTelHTTP:   cfg.EnableOTelHTTP,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app.New(cfg, logger, server, runtime, readiness, nil).Run(ctx)
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	if cfg.DatabaseURL != "" {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	}
	// Development fallback; Validate rejects this in production.
	return gorm.Open(sqlite.Open("vidora.db"), gormCfg)
}

func loadgenCommand() *cobra.Command {
	opts := loadgen.Options{}
	var timeoutSeconds int
	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Generate synthetic traffic against a running instance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Timeout = time.Duration(timeoutSeconds) * time.Second
			var summary loadgen.Summary
			err := ui.Run(fmt.Sprintf("loadgen %s -> %s", opts.Profile, opts.BaseURL), func() error {
				var runErr error
				summary, runErr = loadgen.Run(cmd.Context(), opts)
				return runErr
			})
			if err != nil {
				return err
			}
			fmt.Println(summary.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "http://localhost:8080", "target base URL")
	cmd.Flags().StringVar(&opts.Profile, "profile", "mixed", "traffic profile: auth, browse or mixed")
	cmd.Flags().IntVar(&opts.Requests, "requests", 100, "number of requests to send")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "concurrent workers")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 5, "per-request timeout in seconds")
	cmd.Flags().StringVar(&opts.Identifier, "identifier", "loadgen", "login identifier for the auth profile")
	cmd.Flags().StringVar(&opts.Password, "password", "loadgen-password", "login password for the auth profile")
	return cmd
}
