package graphql

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/ghscan/internal/logger"
)

const (
	// GitHubRateLimit is the authenticated GraphQL point budget per hour.
	GitHubRateLimit = 5000

	// LowWatermark is the remaining budget below which a warning is logged.
	LowWatermark = 100

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateUsed is the consumed requests header.
	HeaderRateUsed = "X-RateLimit-Used"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"

	// HeaderRateResource is the rate limit bucket header.
	HeaderRateResource = "X-RateLimit-Resource"
)

// RateObserver records the rate limit state reported by response headers.
// It never delays requests.
type RateObserver struct {
	mu   sync.Mutex
	rate gh.Rate
	seen bool
}

// NewRateObserver creates an observer assuming a full budget.
func NewRateObserver() *RateObserver {
	return &RateObserver{
		rate: gh.Rate{Limit: GitHubRateLimit, Remaining: GitHubRateLimit},
	}
}

// Observe updates the state from resp headers. Headers that are absent or
// malformed leave the previous value in place.
func (r *RateObserver) Observe(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if val, ok := headerInt(resp, HeaderRateLimit); ok {
		r.rate.Limit = val
		r.seen = true
	}
	if val, ok := headerInt(resp, HeaderRateRemaining); ok {
		r.rate.Remaining = val
		r.seen = true
	}
	if val, ok := headerInt(resp, HeaderRateUsed); ok {
		r.rate.Used = val
	}
	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			r.rate.Reset = gh.Timestamp{Time: time.Unix(val, 0)}
		}
	}
	if resource := resp.Header.Get(HeaderRateResource); resource != "" {
		r.rate.Resource = resource
	}

	if r.seen && r.rate.Remaining < LowWatermark {
		logger.Warn("GitHub rate limit low: %d of %d remaining, resets at %s",
			r.rate.Remaining, r.rate.Limit, r.rate.Reset.Format(time.RFC3339))
	}
}

// Rate returns a snapshot of the last observed state.
func (r *RateObserver) Rate() gh.Rate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rate
}

// Remaining returns the last observed remaining budget.
func (r *RateObserver) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rate.Remaining
}

// Limit returns the last observed budget.
func (r *RateObserver) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rate.Limit
}

// ResetTime returns the last observed reset time.
func (r *RateObserver) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rate.Reset.Time
}

func headerInt(resp *http.Response, name string) (int, bool) {
	raw := resp.Header.Get(name)
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return val, true
}
