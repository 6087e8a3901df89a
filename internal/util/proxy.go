package util

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// maxRedirects bounds redirect chains when fetching article pages
const maxRedirects = 5

// NewProxyFunc creates a proxy function from explicit proxy URLs.
// With neither set it defers to HTTP_PROXY/HTTPS_PROXY/NO_PROXY.
func NewProxyFunc(httpProxy, httpsProxy string) (func(*http.Request) (*url.URL, error), error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment, nil
	}

	var httpURL, httpsURL *url.URL
	var err error
	if httpProxy != "" {
		if httpURL, err = url.Parse(httpProxy); err != nil {
			return nil, fmt.Errorf("parse http proxy: %w", err)
		}
	}
	if httpsProxy != "" {
		if httpsURL, err = url.Parse(httpsProxy); err != nil {
			return nil, fmt.Errorf("parse https proxy: %w", err)
		}
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsURL != nil {
			return httpsURL, nil
		}
		if httpURL != nil {
			return httpURL, nil
		}
		return http.ProxyFromEnvironment(req)
	}, nil
}

// ClientOptions configures NewHTTPClient
type ClientOptions struct {
	Timeout     time.Duration
	InsecureTLS bool
	HTTPProxy   string
	HTTPSProxy  string
}

// NewHTTPClient builds the client shared by page fetching, robots.txt
// lookups and feed loading
func NewHTTPClient(opts ClientOptions) (*http.Client, error) {
	proxy, err := NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxy
	if opts.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}, nil
}
