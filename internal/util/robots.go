package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsChecker answers robots.txt questions, caching one parsed file per host
type RobotsChecker struct {
	httpClient *http.Client
	agent      string

	mu    sync.RWMutex
	hosts map[string]*robotstxt.RobotsData
}

// NewRobotsChecker creates a checker. The product token of userAgent is
// used for group matching.
func NewRobotsChecker(userAgent string, client *http.Client) *RobotsChecker {
	if client == nil {
		client = http.DefaultClient
	}
	return &RobotsChecker{
		httpClient: client,
		agent:      productToken(userAgent),
		hosts:      make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be fetched. An unreachable or
// unparseable robots.txt allows the fetch.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse URL: %w", err)
	}

	data, err := r.load(ctx, parsed)
	if err != nil {
		return true, nil
	}
	return data.TestAgent(parsed.EscapedPath(), r.agent), nil
}

func (r *RobotsChecker) load(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, ok := r.hosts[u.Host]
	r.mu.RUnlock()
	if ok {
		return data, nil
	}

	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// FromResponse maps 4xx to allow-all and 5xx to disallow-all
	data, err = robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.mu.Lock()
	r.hosts[u.Host] = data
	r.mu.Unlock()
	return data, nil
}

// productToken reduces "newslens/0.1 (+https://...)" to "newslens"
func productToken(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return ua
	}
	return strings.SplitN(fields[0], "/", 2)[0]
}
