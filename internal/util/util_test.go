package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUserAgent(t *testing.T) {
	assert.Equal(t, "arbitr", NormalizeUserAgent("arbitr/0.3 (+https://github.com/0ne-nine9/arbitr)"))
	assert.Equal(t, "curl", NormalizeUserAgent("curl"))
	assert.Equal(t, "", NormalizeUserAgent(""))
}

func TestRobotsChecker_Rules(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		hits.Add(1)
		_, _ = fmt.Fprint(w, "User-agent: arbitr\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n")
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "arbitr/0.3")
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/news/story")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 2*time.Second, delay)

	allowed, _, err = checker.CanFetch(ctx, server.URL+"/private/page")
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.Equal(t, int32(1), hits.Load(), "robots.txt is fetched once per host")

	checker.Clear()
	_, _, _ = checker.CanFetch(ctx, server.URL+"/")
	assert.Equal(t, int32(2), hits.Load())
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	allowed, _, err := NewRobotsChecker(server.Client(), "arbitr").CanFetch(context.Background(), server.URL+"/a")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRobotsChecker_ServerErrorDisallows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	allowed, _, err := NewRobotsChecker(server.Client(), "arbitr").CanFetch(context.Background(), server.URL+"/a")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRobotsChecker_BadURL(t *testing.T) {
	_, _, err := NewRobotsChecker(nil, "arbitr").CanFetch(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestNewProxyFunc(t *testing.T) {
	proxy, err := NewProxyFunc("http://proxy.local:3128", "http://secure-proxy.local:3129")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	u, err := proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "secure-proxy.local:3129", u.Host)

	req, _ = http.NewRequest(http.MethodGet, "http://example.com", nil)
	u, err = proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.local:3128", u.Host)

	_, err = NewProxyFunc("://bad", "")
	assert.Error(t, err)
}

func TestNewHTTPClient(t *testing.T) {
	client, err := NewHTTPClient(ClientOptions{Timeout: 5 * time.Second, InsecureTLS: true})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
}
