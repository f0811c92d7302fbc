// Package chunk splits documents into overlapping windows for the map step.
package chunk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/newslens/internal/model"
)

var (
	// ErrEmptyInput is returned for text that is empty after trimming
	ErrEmptyInput = errors.New("Empty input text provided")

	// ErrNoChunks means splitting produced nothing to summarize
	ErrNoChunks = errors.New("no chunks produced from input")
)

// Config sets the window size and overlap, both in runes
type Config struct {
	Size    int
	Overlap int
}

// DefaultConfig returns the 1000/200 windowing
func DefaultConfig() Config {
	return Config{Size: 1000, Overlap: 200}
}

// Validate checks that windows advance
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Size)
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("chunk overlap must be in [0, %d), got %d", c.Size, c.Overlap)
	}
	return nil
}

// Split cuts text into chunks of at most cfg.Size runes. Chunk i starts at
// rune i*(Size-Overlap); a chunk starts at every such offset inside the text.
// Concatenating each chunk minus its leading overlap reproduces text.
func Split(text string, cfg Config) ([]model.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(text)
	step := cfg.Size - cfg.Overlap

	chunks := make([]model.Chunk, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := min(start+cfg.Size, len(runes))
		chunks = append(chunks, model.Chunk{
			Index: len(chunks),
			Start: start,
			Text:  string(runes[start:end]),
		})
	}

	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}
	return chunks, nil
}
