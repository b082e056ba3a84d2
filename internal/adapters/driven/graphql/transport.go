package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
	"github.com/custodia-labs/ghscan/internal/logger"
)

const (
	// DefaultEndpoint is the GitHub GraphQL API endpoint.
	DefaultEndpoint = "https://api.github.com/graphql"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// UserAgent identifies requests made by ghscan.
	UserAgent = "ghscan"
)

// Ensure HTTPTransport implements the Transport interface.
var _ driven.Transport = (*HTTPTransport)(nil)

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient sets the base client the bearer-token client wraps.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		t.base = c
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		t.timeout = d
	}
}

// HTTPTransport sends GraphQL requests over HTTP with bearer authentication.
type HTTPTransport struct {
	endpoint      string
	tokenProvider driven.TokenProvider
	base          *http.Client
	timeout       time.Duration
	rate          *RateObserver

	mu     sync.Mutex
	client *http.Client
}

// NewHTTPTransport creates a transport for endpoint (DefaultEndpoint when empty).
func NewHTTPTransport(endpoint string, tokenProvider driven.TokenProvider, opts ...TransportOption) *HTTPTransport {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	t := &HTTPTransport{
		endpoint:      endpoint,
		tokenProvider: tokenProvider,
		timeout:       DefaultTimeout,
		rate:          NewRateObserver(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Endpoint returns the GraphQL endpoint URL.
func (t *HTTPTransport) Endpoint() string {
	return t.endpoint
}

// RateObserver returns the rate limit observer for diagnostics.
func (t *HTTPTransport) RateObserver() *RateObserver {
	return t.rate
}

type request struct {
	Query         string           `json:"query"`
	Variables     domain.Variables `json:"variables,omitempty"`
	OperationName string           `json:"operationName,omitempty"`
}

// Send POSTs the query and returns the raw response body.
func (t *HTTPTransport) Send(ctx context.Context, q *domain.CompiledQuery, vars domain.Variables) ([]byte, error) {
	client, err := t.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(request{
		Query:         q.Text,
		Variables:     vars,
		OperationName: q.OperationName,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", domain.ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	t.rate.Observe(resp)

	if err := t.wrapError(gh.CheckResponse(resp)); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrTransport, err)
	}
	logger.Debug("POST %s: %d (%d bytes)", t.endpoint, resp.StatusCode, len(body))

	return body, nil
}

// ensureClient builds the bearer-token client on first use.
// The token is fetched once; a missing token is a configuration error.
func (t *HTTPTransport) ensureClient(ctx context.Context) (*http.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		return t.client, nil
	}
	if t.tokenProvider == nil {
		return nil, fmt.Errorf("%w: %w: no token provider", domain.ErrConfiguration, domain.ErrCredentialMissing)
	}

	token, err := t.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: get token: %w", domain.ErrConfiguration, err)
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	clientCtx := context.Background()
	if t.base != nil {
		clientCtx = context.WithValue(clientCtx, oauth2.HTTPClient, t.base)
	}
	tc := oauth2.NewClient(clientCtx, ts)
	tc.Timeout = t.timeout
	t.client = tc

	return tc, nil
}

// wrapError converts go-github response errors to our error types.
func (t *HTTPTransport) wrapError(err error) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		resetAt := time.Now()
		if abuseErr.RetryAfter != nil {
			resetAt = resetAt.Add(*abuseErr.RetryAfter)
		}
		return &RateLimitError{
			ResetAt:   resetAt,
			Remaining: t.rate.Remaining(),
			Limit:     t.rate.Limit(),
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		apiErr := &APIError{Message: ghErr.Message, URL: t.endpoint}
		if ghErr.Response != nil {
			apiErr.StatusCode = ghErr.Response.StatusCode
		}
		return apiErr
	}

	return err
}
