// Package qa answers free-form questions about a summary.
package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/ppiankov/newslens/internal/llm"
)

// ErrMissingInput is returned when the summary or the question is blank
var ErrMissingInput = errors.New("Missing summary or question")

const answerSystem = "You answer questions about a news summary. " +
	"Ground your answer in the summary first. " +
	"Where the summary is incomplete, supplement it with general knowledge and say which part comes from outside the summary. " +
	"If you are uncertain, say so plainly; never invent facts, names, dates or figures. " +
	`Respond with a JSON object of the form {"answer": "..."}.`

var answerPrompt = prompts.NewPromptTemplate(
	"Summary:\n{{.summary}}\n\nQuestion: {{.question}}",
	[]string{"summary", "question"},
)

// Answerer answers questions about a summary
type Answerer struct {
	llm llm.Completer
}

// NewAnswerer creates an answerer
func NewAnswerer(completer llm.Completer) *Answerer {
	return &Answerer{llm: completer}
}

type answerReply struct {
	Answer *string `json:"answer"`
}

// Answer returns the model's answer. A reply without an "answer" field is a
// *llm.ParseError; there is no fallback.
func (a *Answerer) Answer(ctx context.Context, summary, question string) (string, error) {
	if strings.TrimSpace(summary) == "" || strings.TrimSpace(question) == "" {
		return "", ErrMissingInput
	}

	prompt, err := answerPrompt.Format(map[string]any{
		"summary":  summary,
		"question": question,
	})
	if err != nil {
		return "", fmt.Errorf("render answer prompt: %w", err)
	}

	var reply answerReply
	if err := a.llm.CompleteJSON(ctx, llm.Request{System: answerSystem, Prompt: prompt}, &reply); err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	if reply.Answer == nil {
		return "", fmt.Errorf("answer question: %w", &llm.ParseError{Err: errors.New(`missing "answer" field`)})
	}

	return strings.TrimSpace(*reply.Answer), nil
}
