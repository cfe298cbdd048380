package loadgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClassifyStatusClass(t *testing.T) {
	cases := map[int]string{
		200: "2xx",
		302: "3xx",
		404: "4xx",
		500: "5xx",
		100: "other",
	}
	for status, want := range cases {
		if got := classifyStatusClass(status); got != want {
			t.Fatalf("classifyStatusClass(%d)=%q want %q", status, got, want)
		}
	}
}

func TestNormalizeProfile(t *testing.T) {
	if got := normalizeProfile(""); got != "mixed" {
		t.Fatalf("normalizeProfile empty=%q want mixed", got)
	}
	if got := normalizeProfile("  AUTH  "); got != "auth" {
		t.Fatalf("normalizeProfile auth=%q want auth", got)
	}
	if got := normalizeProfile("bogus"); got != "mixed" {
		t.Fatalf("normalizeProfile bogus=%q want mixed", got)
	}
}

func TestRunCountsResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	summary, err := Run(context.Background(), Options{
		BaseURL:     srv.URL,
		Profile:     "auth",
		Requests:    10,
		Concurrency: 2,
		Timeout:     time.Second,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Total != 10 {
		t.Fatalf("expected 10 requests, got %d", summary.Total)
	}
	if summary.ByClass["4xx"] != 10 {
		t.Fatalf("expected all 4xx, got %+v", summary.ByClass)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := Run(ctx, Options{BaseURL: "http://127.0.0.1:0", Requests: 5})
	if err == nil && summary.Total == 5 {
		t.Fatal("expected cancellation to stop the run early")
	}
}
