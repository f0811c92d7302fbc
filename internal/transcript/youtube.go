package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/ppiankov/newslens/internal/cache"
	"github.com/ppiankov/newslens/internal/model"
	"github.com/ppiankov/newslens/internal/retry"
	"github.com/ppiankov/newslens/internal/util"
	"github.com/ppiankov/newslens/internal/worker"
)

var (
	// ErrNoTranscript is returned when the video has no caption tracks
	ErrNoTranscript = errors.New("no transcript available for this video")
	// ErrRobotsDisallowed is returned when robots.txt forbids the watch page
	ErrRobotsDisallowed = errors.New("robots.txt disallows fetching this video page")
)

const (
	playerResponseMarker = "ytInitialPlayerResponse"
	maxPageBytes         = 4 << 20
)

// Segment is one caption line
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Join concatenates segment texts with single spaces, in order
func Join(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Fetcher downloads caption tracks from the video site
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	languages  []string
	cacheTTL   time.Duration

	cache   cache.Cache
	limiter *worker.Limiter
	robots  *util.RobotsChecker
	retry   retry.Config
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithCache stores fetched transcripts in c
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.cache = c
		f.cacheTTL = ttl
	}
}

// WithLimiter throttles requests per host
func WithLimiter(l *worker.Limiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithRetry overrides the retry policy
func WithRetry(cfg retry.Config) Option {
	return func(f *Fetcher) { f.retry = cfg }
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.httpClient = c }
}

// NewFetcher creates a fetcher from config
func NewFetcher(cfg model.TranscriptConfig, opts ...Option) *Fetcher {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://www.youtube.com"
	}
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"en", "hi"}
	}

	rc := retry.DefaultConfig()
	if cfg.MaxRetries > 0 {
		rc.MaxRetries = cfg.MaxRetries
	}

	f := &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		languages:  languages,
		cache:      cache.Noop{},
		retry:      rc,
	}
	for _, opt := range opts {
		opt(f)
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(cfg.UserAgent, f.httpClient)
	}
	return f
}

// Fetch returns the caption segments of videoID in the first available
// preferred language, falling back to any track
func (f *Fetcher) Fetch(ctx context.Context, videoID string, languages ...string) ([]Segment, error) {
	if len(languages) == 0 {
		languages = f.languages
	}
	log := zerolog.Ctx(ctx).With().Str("video", videoID).Logger()

	key := cache.Key("transcript", videoID, strings.Join(languages, ","))
	var segments []Segment
	if cache.GetJSON(f.cache, key, &segments) {
		log.Debug().Msg("transcript cache hit")
		return segments, nil
	}

	watchURL := f.baseURL + "/watch?v=" + url.QueryEscape(videoID)
	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, watchURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrRobotsDisallowed
		}
	}

	page, err := f.get(ctx, watchURL)
	if err != nil {
		return nil, fmt.Errorf("fetch watch page: %w", err)
	}

	tracks, err := captionTracks(page)
	if err != nil {
		return nil, err
	}
	track, ok := pickTrack(tracks, languages)
	if !ok {
		return nil, ErrNoTranscript
	}

	trackURL, err := f.resolve(track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("caption track url: %w", err)
	}
	raw, err := f.get(ctx, trackURL)
	if err != nil {
		return nil, fmt.Errorf("fetch captions: %w", err)
	}

	segments, err = parseTimedText(raw)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, ErrNoTranscript
	}

	log.Info().
		Str("language", track.LanguageCode).
		Bool("generated", track.Kind == "asr").
		Int("segments", len(segments)).
		Msg("transcript fetched")

	if err := cache.SetJSON(f.cache, key, segments, f.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("transcript cache write failed")
	}
	return segments, nil
}

// get performs a GET with throttling and retries on transient failures
func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	return retry.Do(ctx, f.retry, "transcript", func(ctx context.Context) ([]byte, error) {
		if err := f.limiter.WaitURL(ctx, rawURL); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if f.userAgent != "" {
			req.Header.Set("User-Agent", f.userAgent)
		}
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, &retry.StatusError{Service: "transcript", StatusCode: resp.StatusCode}
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	})
}

func (f *Fetcher) resolve(ref string) (string, error) {
	base, err := url.Parse(f.baseURL + "/")
	if err != nil {
		return "", err
	}
	u, err := base.Parse(html.UnescapeString(ref))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// captionTracks finds the player response in the page scripts
func captionTracks(page []byte) ([]captionTrack, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}

	var payload string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, playerResponseMarker)
		if idx < 0 {
			return true
		}
		payload = extractObject(text[idx+len(playerResponseMarker):])
		return payload == ""
	})
	if payload == "" {
		return nil, fmt.Errorf("%w: player response not found", ErrNoTranscript)
	}

	var pr playerResponse
	if err := json.Unmarshal([]byte(payload), &pr); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	if s := pr.PlayabilityStatus.Status; s != "" && s != "OK" {
		return nil, fmt.Errorf("video unavailable (%s): %s", strings.ToLower(s), pr.PlayabilityStatus.Reason)
	}

	tracks := pr.Captions.Renderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, ErrNoTranscript
	}
	return tracks, nil
}

// extractObject returns the first balanced {...} in s, honoring JSON strings
func extractObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// pickTrack prefers manual tracks in preference order, then generated
// tracks in preference order, then the first track
func pickTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}
	for _, generated := range []bool{false, true} {
		for _, lang := range languages {
			for _, t := range tracks {
				if (t.Kind == "asr") == generated && matchesLanguage(t.LanguageCode, lang) {
					return t, true
				}
			}
		}
	}
	return tracks[0], true
}

func matchesLanguage(code, want string) bool {
	code, want = strings.ToLower(code), strings.ToLower(want)
	return code == want || strings.HasPrefix(code, want+"-")
}

type timedText struct {
	Texts []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Body  string `xml:",chardata"`
	} `xml:"text"`
}

// parseTimedText decodes the caption XML. Entities are unescaped twice
// because the service double-encodes them.
func parseTimedText(raw []byte) ([]Segment, error) {
	var tt timedText
	if err := xml.Unmarshal(raw, &tt); err != nil {
		return nil, fmt.Errorf("decode captions: %w", err)
	}

	segments := make([]Segment, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		text := strings.Join(strings.Fields(html.UnescapeString(t.Body)), " ")
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(t.Start, 64)
		dur, _ := strconv.ParseFloat(t.Dur, 64)
		segments = append(segments, Segment{Text: text, Start: start, Duration: dur})
	}
	return segments, nil
}
