// Package project expands documentation templates with extracted constructs.
package project

import (
	"strings"

	"github.com/phobologic/declmap/internal/config"
	"github.com/phobologic/declmap/internal/model"
)

// Engine projects a registry into a template.
type Engine struct {
	tokens config.Template
}

// New creates an Engine recognising the tokens in t.
func New(t config.Template) *Engine {
	return &Engine{tokens: t}
}

// Project returns template with every placeholder line expanded once per
// construct of the placeholder's kind, in registry order. A placeholder line
// whose kind has no constructs is dropped. Other lines pass through
// unchanged. CRLF line endings are normalised to LF.
func (e *Engine) Project(template string, reg *model.Registry) string {
	groups := reg.ByKind()
	text := strings.ReplaceAll(template, "\r\n", "\n")
	trailing := strings.HasSuffix(text, "\n")

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if text == "" {
		lines = nil
	}

	var out []string
	for _, line := range lines {
		kind, ok := e.placeholderKind(line)
		if !ok {
			out = append(out, line)
			continue
		}
		for _, c := range groups[kind] {
			out = append(out, e.expand(line, kind, c))
		}
	}

	result := strings.Join(out, "\n")
	if trailing && len(out) > 0 {
		result += "\n"
	}
	return result
}

// placeholderKind returns the first kind, in priority order, whose
// placeholder appears in line.
func (e *Engine) placeholderKind(line string) (model.Kind, bool) {
	for _, k := range model.Kinds {
		for _, tok := range e.tokens.Placeholders[k] {
			if tok != "" && strings.Contains(line, tok) {
				return k, true
			}
		}
	}
	return "", false
}

func (e *Engine) expand(line string, kind model.Kind, c model.Construct) string {
	for _, tok := range e.tokens.Placeholders[kind] {
		if tok != "" {
			line = strings.ReplaceAll(line, tok, c.Name)
		}
	}
	if e.tokens.SummaryToken != "" {
		line = strings.ReplaceAll(line, e.tokens.SummaryToken, e.summary(c))
	}
	if e.tokens.OneSentenceToken != "" {
		line = strings.ReplaceAll(line, e.tokens.OneSentenceToken, e.oneSentence(c))
	}
	return line
}

func (e *Engine) summary(c model.Construct) string {
	if c.Summary == "" {
		return e.tokens.Fallback
	}
	return c.Summary
}

// oneSentence returns the summary up to, and excluding, its first period.
func (e *Engine) oneSentence(c model.Construct) string {
	if c.Summary == "" {
		return e.tokens.Fallback
	}
	s := c.Summary
	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
