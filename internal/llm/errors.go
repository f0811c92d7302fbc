package llm

import (
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/newslens/internal/retry"
)

// ErrEmptyResponse is returned when the backend answers without content
var ErrEmptyResponse = errors.New("empty response from LLM")

// ErrTruncated is returned when the backend stopped at the token limit.
// The partial text is discarded and the call is not retried.
var ErrTruncated = errors.New("LLM reply truncated at the token limit")

// ParseError means the reply did not match the requested JSON shape.
// Parse errors are never retried.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse LLM response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is worth retrying: rate limits, 5xx,
// per-call timeouts and network failures from any provider
func IsTransient(err error) bool {
	var parseErr *ParseError
	if errors.As(err, &parseErr) || errors.Is(err, ErrTruncated) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retry.IsTransientStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if retry.IsTransientStatus(reqErr.HTTPStatusCode) {
			return true
		}
		return retry.IsTransient(reqErr.Err)
	}

	return retry.IsTransient(err)
}
