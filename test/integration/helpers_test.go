package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/http/handler"
	"github.com/vidora/vidora-backend/internal/http/router"
	"github.com/vidora/vidora-backend/internal/repository"
	"github.com/vidora/vidora-backend/internal/security"
	"github.com/vidora/vidora-backend/internal/service"
	"github.com/vidora/vidora-backend/internal/storage"
)

const (
	testAccessTTL  = 15 * time.Minute
	testRefreshTTL = 24 * time.Hour
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T) (string, *http.Client, func()) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Video{},
		&domain.Subscription{},
		&domain.WatchHistoryEntry{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepository(db)
	videos := repository.NewVideoRepository(db)
	subs := repository.NewSubscriptionRepository(db)
	history := repository.NewWatchHistoryRepository(db)

	media := storage.NewInMemoryMediaStorage()
	stats := service.NewInMemoryChannelStatsCache()

	jwtMgr := security.NewJWTManager(
		"iss",
		"aud",
		"abcdefghijklmnopqrstuvwxyz123456",
		"abcdefghijklmnopqrstuvwxyz654321",
	)
	tokenSvc := service.NewTokenService(jwtMgr, users, testAccessTTL, testRefreshTTL)
	authSvc := service.NewAuthService(users, tokenSvc)
	userSvc := service.NewUserService(users, subs, history, media, stats)
	subSvc := service.NewSubscriptionService(users, subs, stats)
	videoSvc := service.NewVideoService(videos, users, history, media)

	h := router.NewRouter(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc, nil, media, testAccessTTL, testRefreshTTL),
		UserHandler:      handler.NewUserHandler(userSvc),
		ChannelHandler:   handler.NewChannelHandler(userSvc, subSvc, videoSvc),
		VideoHandler:     handler.NewVideoHandler(videoSvc),
		Authenticator:    tokenSvc,
		AuthRateLimitRPM: 10000,
		APIRateLimitRPM:  10000,
	})

	srv := httptest.NewServer(h)
	return srv.URL, srv.Client(), srv.Close
}

// doJSON sends a JSON body plus any explicit cookies and decodes the
// response envelope. Cookies are attached manually because the auth
// cookies are Secure and a jar would drop them over plain http.
func doJSON(t *testing.T, client *http.Client, method, url string, body any, cookies []*http.Cookie) (*http.Response, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func responseCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set on response", name)
	return nil
}

func errorCode(t *testing.T, env envelope) string {
	t.Helper()
	if env.Error == nil {
		t.Fatal("expected an error envelope")
	}
	return env.Error.Code
}
