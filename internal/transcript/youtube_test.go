package transcript

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

	"github.com/ppiankov/newslens/internal/cache"
	"github.com/ppiankov/newslens/internal/model"
	"github.com/ppiankov/newslens/internal/retry"
)

const captionsXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
	`<text start="0.5" dur="2.1">Floods hit the   coast</text>` +
	`<text start="2.6" dur="1.9">officials say it&amp;#39;s the worst in decades</text>` +
	`<text start="4.5" dur="1"></text>` +
	`</transcript>`

func watchPage(tracks string) string {
	return `<html><head><script>var x = 1;</script>` +
		`<script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"},` +
		`"videoDetails":{"title":"a {tricky} \"title\""},` +
		`"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` + tracks + `]}}};var meta = {};</script>` +
		`</head><body></body></html>`
}

type fakeSite struct {
	page          string
	watchFailures int32
	watchHits     atomic.Int32
	captionHits   atomic.Int32
	lastLang      atomic.Value
}

func (s *fakeSite) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if s.watchHits.Add(1) <= s.watchFailures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, s.page)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		s.captionHits.Add(1)
		s.lastLang.Store(r.URL.Query().Get("lang"))
		_, _ = fmt.Fprint(w, captionsXML)
	})
	return mux
}

func newTestFetcher(baseURL string, opts ...Option) *Fetcher {
	opts = append([]Option{WithRetry(retry.Config{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1})}, opts...)
	return NewFetcher(model.TranscriptConfig{BaseURL: baseURL, Languages: []string{"en", "hi"}, UserAgent: "newslens-test"}, opts...)
}

func TestFetcher_Fetch(t *testing.T) {
	site := &fakeSite{page: watchPage(
		`{"baseUrl":"/api/timedtext?v=abc&amp;lang=hi","languageCode":"hi"},` +
			`{"baseUrl":"/api/timedtext?v=abc&lang=en","languageCode":"en","kind":"asr"},` +
			`{"baseUrl":"/api/timedtext?v=abc&lang=en-GB","languageCode":"en-GB"}`)}
	server := httptest.NewServer(site.handler())
	defer server.Close()

	segments, err := newTestFetcher(server.URL).Fetch(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, "en-GB", site.lastLang.Load(), "manual English track preferred over generated")
	require.Len(t, segments, 2)
	assert.Equal(t, Segment{Text: "Floods hit the coast", Start: 0.5, Duration: 2.1}, segments[0])
	assert.Equal(t, "officials say it's the worst in decades", segments[1].Text)
	assert.Equal(t, "Floods hit the coast officials say it's the worst in decades", Join(segments))
}

func TestFetcher_LanguageFallback(t *testing.T) {
	site := &fakeSite{page: watchPage(
		`{"baseUrl":"/api/timedtext?lang=fr","languageCode":"fr"},` +
			`{"baseUrl":"/api/timedtext?lang=hi","languageCode":"hi","kind":"asr"}`)}
	server := httptest.NewServer(site.handler())
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "hi", site.lastLang.Load())

	_, err = newTestFetcher(server.URL).Fetch(context.Background(), "abc", "de")
	require.NoError(t, err)
	assert.Equal(t, "fr", site.lastLang.Load(), "first track when nothing matches")
}

func TestFetcher_RetriesTransientFailures(t *testing.T) {
	site := &fakeSite{
		page:          watchPage(`{"baseUrl":"/api/timedtext?lang=en","languageCode":"en"}`),
		watchFailures: 2,
	}
	server := httptest.NewServer(site.handler())
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background(), "abc")
	require.NoError(t, err)
	assert.EqualValues(t, 3, site.watchHits.Load())
}

func TestFetcher_NoCaptions(t *testing.T) {
	site := &fakeSite{page: watchPage("")}
	server := httptest.NewServer(site.handler())
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNoTranscript)

	site.page = "<html><body>nothing here</body></html>"
	_, err = newTestFetcher(server.URL).Fetch(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNoTranscript)
	assert.Zero(t, site.captionHits.Load())
}

func TestFetcher_Unplayable(t *testing.T) {
	site := &fakeSite{page: `<script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in to confirm your age"}};</script>`}
	server := httptest.NewServer(site.handler())
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background(), "abc")
	assert.ErrorContains(t, err, "Sign in to confirm your age")
}

func TestFetcher_UsesCache(t *testing.T) {
	site := &fakeSite{page: watchPage(`{"baseUrl":"/api/timedtext?lang=en","languageCode":"en"}`)}
	server := httptest.NewServer(site.handler())
	defer server.Close()

	c := cache.NewMemoryCache(time.Minute, time.Minute)
	f := newTestFetcher(server.URL, WithCache(c, time.Minute))

	first, err := f.Fetch(context.Background(), "abc")
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, site.watchHits.Load())
	assert.EqualValues(t, 1, site.captionHits.Load())
}

func TestFetcher_RespectsRobots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /watch\n")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := NewFetcher(model.TranscriptConfig{BaseURL: server.URL, UserAgent: "newslens-test", RespectRobots: true})
	_, err := f.Fetch(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrRobotsDisallowed)
}

func TestExtractObject(t *testing.T) {
	assert.Equal(t, `{"a":{"b":"}"}}`, extractObject(` = {"a":{"b":"}"}};`))
	assert.Equal(t, `{"q":"\"{"}`, extractObject(`{"q":"\"{"} trailing`))
	assert.Equal(t, "", extractObject(`= {"open":`))
	assert.Equal(t, "", extractObject("no braces"))
}

func TestJoin_SkipsBlank(t *testing.T) {
	assert.Equal(t, "a b", Join([]Segment{{Text: " a "}, {Text: ""}, {Text: "b"}}))
	assert.Equal(t, "", Join(nil))
}
