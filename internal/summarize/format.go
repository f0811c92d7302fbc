package summarize

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/prompts"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"

	"github.com/ppiankov/newslens/internal/llm"
)

// AllowedTags is the HTML vocabulary the formatter may emit
var AllowedTags = []string{"h2", "h3", "p", "ul", "li", "strong", "em", "br"}

var allowedTagSet = func() map[string]bool {
	set := make(map[string]bool, len(AllowedTags))
	for _, t := range AllowedTags {
		set[t] = true
	}
	return set
}()

const formatSystem = "You format a summary as HTML. " +
	"Use only these tags: <h2>, <h3>, <p>, <ul>, <li>, <strong>, <em>, <br>. " +
	"Start with an <h2> title, group related points under <h3> headings and use lists for enumerations. " +
	"Never use markdown syntax such as ** or #. Do not wrap the output in code fences. " +
	"Reply with the HTML only."

var formatPrompt = prompts.NewPromptTemplate(
	"Format the following summary:\n\n{{.text}}",
	[]string{"text"},
)

var (
	strongPattern     = regexp.MustCompile(`\*\*([^*\n]+?)\*\*|__([^_\n]+?)__`)
	emPattern         = regexp.MustCompile(`(^|[^*\w])\*([^*\s][^*\n]*?)\*($|[^*\w])`)
	mdHeadingPattern  = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
	mdListItemPattern = regexp.MustCompile(`(?m)^\s*[-*+]\s+\S`)
)

// Formatted is the final HTML plus any non-fatal findings
type Formatted struct {
	HTML     string   `json:"html"`
	Warnings []string `json:"warnings,omitempty"`
}

// Formatter turns the combined summary into restricted HTML
type Formatter struct {
	llm llm.Completer
	md  goldmark.Markdown
}

// NewFormatter creates a formatter
func NewFormatter(completer llm.Completer) *Formatter {
	return &Formatter{
		llm: completer,
		md:  goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe())),
	}
}

// Format makes one free-text LLM call and normalizes the reply
func (f *Formatter) Format(ctx context.Context, combined string) (*Formatted, error) {
	prompt, err := formatPrompt.Format(map[string]any{"text": combined})
	if err != nil {
		return nil, fmt.Errorf("render format prompt: %w", err)
	}

	reply, err := f.llm.Complete(ctx, llm.Request{System: formatSystem, Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("format summary: %w", err)
	}

	out := f.Normalize(reply)
	for _, w := range out.Warnings {
		zerolog.Ctx(ctx).Warn().Str("warning", w).Msg("formatter output adjusted")
	}
	return out, nil
}

// Normalize strips fences, repairs markdown and reports tags outside
// AllowedTags. It never rejects output.
func (f *Formatter) Normalize(reply string) *Formatted {
	out := &Formatted{HTML: llm.StripFences(reply)}

	switch {
	case !hasTags(out.HTML) && looksLikeMarkdown(out.HTML):
		var buf bytes.Buffer
		if err := f.md.Convert([]byte(out.HTML), &buf); err == nil {
			out.HTML = strings.TrimSpace(buf.String())
			out.Warnings = append(out.Warnings, "reply was markdown; converted to HTML")
		}
	case hasEmphasis(out.HTML):
		out.HTML = repairEmphasis(out.HTML)
		out.Warnings = append(out.Warnings, "markdown emphasis replaced with HTML tags")
	}

	out.Warnings = append(out.Warnings, CheckTags(out.HTML)...)
	return out
}

// CheckTags lists each disallowed tag once, in order of first appearance
func CheckTags(s string) []string {
	var warnings []string
	seen := make(map[string]bool)

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return warnings
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if !allowedTagSet[tag] && !seen[tag] {
				seen[tag] = true
				warnings = append(warnings, fmt.Sprintf("disallowed tag <%s>", tag))
			}
		}
	}
}

func hasTags(s string) bool {
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			return true
		}
	}
}

func hasEmphasis(s string) bool {
	return strongPattern.MatchString(s) || emPattern.MatchString(s)
}

func looksLikeMarkdown(s string) bool {
	return hasEmphasis(s) || mdHeadingPattern.MatchString(s) || mdListItemPattern.MatchString(s)
}

func repairEmphasis(s string) string {
	s = strongPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := strongPattern.FindStringSubmatch(m)
		inner := sub[1]
		if inner == "" {
			inner = sub[2]
		}
		return "<strong>" + inner + "</strong>"
	})
	// Boundary characters are consumed, so adjacent spans need a second pass.
	for i := 0; i < 3 && emPattern.MatchString(s); i++ {
		s = emPattern.ReplaceAllString(s, "$1<em>$2</em>$3")
	}
	return s
}
