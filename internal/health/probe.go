package health

import (
	"context"
	"sync"
	"time"
)

type CheckFunc func(ctx context.Context) error

type CheckResult struct {
	Name      string `json:"name"`
	Healthy   bool   `json:"healthy"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

type check struct {
	name string
	fn   CheckFunc
}

// ProbeRunner evaluates registered dependency checks for the readiness
// endpoint. Checks run sequentially under a shared timeout.
type ProbeRunner struct {
	mu      sync.RWMutex
	checks  []check
	timeout time.Duration
}

func NewProbeRunner(timeout time.Duration) *ProbeRunner {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ProbeRunner{timeout: timeout}
}

func (p *ProbeRunner) Register(name string, fn CheckFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checks = append(p.checks, check{name: name, fn: fn})
}

func (p *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	p.mu.RLock()
	checks := make([]check, len(p.checks))
	copy(checks, p.checks)
	p.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ready := true
	results := make([]CheckResult, 0, len(checks))
	for _, c := range checks {
		start := time.Now()
		err := c.fn(ctx)
		result := CheckResult{Name: c.name, Healthy: err == nil, LatencyMS: time.Since(start).Milliseconds()}
		if err != nil {
			result.Error = err.Error()
			ready = false
		}
		results = append(results, result)
	}
	return ready, results
}
