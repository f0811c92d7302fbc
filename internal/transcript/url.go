// Package transcript retrieves video captions for summarization.
package transcript

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrInvalidURL is returned for anything that is not an absolute http(s) URL
	ErrInvalidURL = errors.New("Invalid URL")
	// ErrNoVideoID is returned when a valid URL carries no recognizable video id
	ErrNoVideoID = errors.New("Could not extract video ID")
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,20}$`)

// ParseVideoURL extracts the video id from watch, youtu.be, shorts and
// embed URLs
func ParseVideoURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch {
	case host == "youtu.be":
		id = firstSegment(u.Path)
	case host == "youtube.com" || host == "music.youtube.com" || host == "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = firstSegment(strings.TrimPrefix(u.Path, "/shorts"))
		case strings.HasPrefix(u.Path, "/embed/"):
			id = firstSegment(strings.TrimPrefix(u.Path, "/embed"))
		case strings.HasPrefix(u.Path, "/live/"):
			id = firstSegment(strings.TrimPrefix(u.Path, "/live"))
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", ErrNoVideoID
	}
	return id, nil
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
