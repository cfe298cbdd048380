package loadgen

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type Options struct {
	BaseURL     string
	Profile     string
	Requests    int
	Concurrency int
	Timeout     time.Duration

	// Credentials for the auth profile; login requests use these.
	Identifier string
	Password   string
}

type Summary struct {
	Total    int
	ByClass  map[string]int
	Duration time.Duration
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "requests=%d duration=%s", s.Total, s.Duration.Round(time.Millisecond))
	for _, class := range []string{"2xx", "3xx", "4xx", "5xx", "error", "other"} {
		if n := s.ByClass[class]; n > 0 {
			fmt.Fprintf(&b, " %s=%d", class, n)
		}
	}
	return b.String()
}

// Run fires synthetic traffic at a running instance and tallies response
// classes. It is a smoke and capacity probe, not a benchmark.
func Run(ctx context.Context, opts Options) (Summary, error) {
	opts = normalizeOptions(opts)
	client := &http.Client{Timeout: opts.Timeout}

	var mu sync.Mutex
	summary := Summary{ByClass: make(map[string]int)}
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := 0; i < opts.Requests; i++ {
		seq := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			class := fire(ctx, client, opts, seq)
			mu.Lock()
			summary.Total++
			summary.ByClass[class]++
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	summary.Duration = time.Since(start)
	return summary, err
}

func fire(ctx context.Context, client *http.Client, opts Options, seq int) string {
	method, path, body := nextRequest(opts.Profile, opts, seq)
	req, err := http.NewRequestWithContext(ctx, method, opts.BaseURL+path, strings.NewReader(body))
	if err != nil {
		return "error"
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return "error"
	}
	resp.Body.Close()
	return classifyStatusClass(resp.StatusCode)
}

func nextRequest(profile string, opts Options, seq int) (method, path, body string) {
	switch profile {
	case "auth":
		if seq%3 == 0 {
			return http.MethodPost, "/api/v1/auth/login",
				fmt.Sprintf(`{"identifier":%q,"password":%q}`, opts.Identifier, opts.Password)
		}
		return http.MethodPost, "/api/v1/auth/refresh", `{"refreshToken":"synthetic"}`
	case "browse":
		if seq%2 == 0 {
			return http.MethodGet, "/api/v1/channels/loadgen", ""
		}
		return http.MethodGet, fmt.Sprintf("/api/v1/videos/%d", seq%100+1), ""
	default:
		if rand.Intn(2) == 0 {
			m, p, b := nextRequest("auth", opts, seq)
			return m, p, b
		}
		m, p, b := nextRequest("browse", opts, seq)
		return m, p, b
	}
}

func normalizeOptions(opts Options) Options {
	opts.Profile = normalizeProfile(opts.Profile)
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8080"
	}
	if opts.Requests <= 0 {
		opts.Requests = 100
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return opts
}

func normalizeProfile(profile string) string {
	profile = strings.ToLower(strings.TrimSpace(profile))
	switch profile {
	case "auth", "browse", "mixed":
		return profile
	case "":
		return "mixed"
	default:
		return "mixed"
	}
}

func classifyStatusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return "other"
	}
}
