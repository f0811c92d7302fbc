package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/newslens/internal/model"
	"github.com/ppiankov/newslens/internal/retry"
)

// Remote calls a model server: POST {"text"} -> {"label"}
type Remote struct {
	name       string
	url        string
	httpClient *http.Client
}

// NewRemote creates a remote classifier
func NewRemote(name, url string, timeout time.Duration, transport http.RoundTripper) *Remote {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Remote{
		name: name,
		url:  url,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Name implements Classifier
func (r *Remote) Name() string { return r.name }

type remoteRequest struct {
	Text string `json:"text"`
}

type remoteResponse struct {
	Label string `json:"label"`
}

// Predict implements Classifier
func (r *Remote) Predict(ctx context.Context, text string) (model.Label, error) {
	body, err := json.Marshal(remoteRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("classifier %s: %w", r.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", fmt.Errorf("classifier %s: read response: %w", r.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &retry.StatusError{
			Service:    "classifier " + r.name,
			StatusCode: resp.StatusCode,
			Message:    string(bytes.TrimSpace(data)),
		}
	}

	var out remoteResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("classifier %s: decode response: %w", r.name, err)
	}

	return NormalizeLabel(out.Label)
}
