package graphql

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func responseWithHeaders(headers map[string]string) *http.Response {
	resp := &http.Response{Header: make(http.Header)}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestRateObserver_Defaults(t *testing.T) {
	r := NewRateObserver()

	assert.Equal(t, GitHubRateLimit, r.Limit())
	assert.Equal(t, GitHubRateLimit, r.Remaining())
	assert.True(t, r.ResetTime().IsZero())
}

func TestRateObserver_Observe(t *testing.T) {
	r := NewRateObserver()

	r.Observe(responseWithHeaders(map[string]string{
		HeaderRateLimit:     "4000",
		HeaderRateRemaining: "3999",
		HeaderRateReset:     "1700000000",
		HeaderRateResource:  "graphql",
	}))

	assert.Equal(t, 4000, r.Limit())
	assert.Equal(t, 3999, r.Remaining())
	assert.Equal(t, time.Unix(1700000000, 0), r.ResetTime())
	assert.Equal(t, "graphql", r.Rate().Resource)
}

func TestRateObserver_IgnoresMalformedHeaders(t *testing.T) {
	r := NewRateObserver()
	r.Observe(responseWithHeaders(map[string]string{HeaderRateRemaining: "42"}))

	r.Observe(responseWithHeaders(map[string]string{
		HeaderRateRemaining: "lots",
		HeaderRateReset:     "soon",
	}))

	assert.Equal(t, 42, r.Remaining())
	assert.True(t, r.ResetTime().IsZero())
}

func TestRateObserver_NilResponse(t *testing.T) {
	r := NewRateObserver()

	assert.NotPanics(t, func() { r.Observe(nil) })
	assert.Equal(t, GitHubRateLimit, r.Remaining())
}
