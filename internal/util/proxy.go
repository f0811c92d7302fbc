// Package util holds the outbound HTTP plumbing shared by the LLM
// providers, the classifier client and the transcript fetcher.
package util

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// NewProxyFunc returns a proxy selector. Explicit settings win; with none
// the standard proxy environment variables apply.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	cfg := httpproxy.Config{
		HTTPProxy:  httpProxy,
		HTTPSProxy: httpsProxy,
		NoProxy:    noProxy,
	}
	proxy := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return proxy(req.URL)
	}
}

// NewTransport clones the default transport with the given proxy settings
func NewTransport(httpProxy, httpsProxy, noProxy string) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = NewProxyFunc(httpProxy, httpsProxy, noProxy)
	return t
}
