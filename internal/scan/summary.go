package scan

import (
	"regexp"
	"strings"
)

const (
	docPrefix    = "///"
	summaryOpen  = "<summary>"
	summaryClose = "</summary>"
)

var (
	markupRe     = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Summaries accumulates <summary> blocks from /// doc-comment lines.
// The zero value is ready to use; use one per file.
type Summaries struct {
	parts []string
	open  bool
}

// Open reports whether a <summary> block has been opened but not closed.
func (s *Summaries) Open() bool {
	return s.open
}

// Observe feeds one source line to the accumulator. It returns the flattened
// summary text when line closes a summary block. Lines without the ///
// prefix are ignored. A closing tag without an opener is ignored.
func (s *Summaries) Observe(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, docPrefix) {
		return "", false
	}
	payload := trimmed[len(docPrefix):]

	openAt := strings.Index(payload, summaryOpen)
	closeAt := strings.Index(payload, summaryClose)

	switch {
	case openAt >= 0 && closeAt > openAt:
		s.parts = s.parts[:0]
		s.add(payload[openAt+len(summaryOpen) : closeAt])
		return s.flush(), true
	case s.open && closeAt >= 0:
		s.add(payload[:closeAt])
		return s.flush(), true
	case openAt >= 0:
		s.parts = s.parts[:0]
		s.open = true
		s.add(payload[openAt+len(summaryOpen):])
	case s.open:
		s.add(payload)
	}
	return "", false
}

func (s *Summaries) add(text string) {
	if text = strings.TrimSpace(text); text != "" {
		s.parts = append(s.parts, text)
	}
}

func (s *Summaries) flush() string {
	text := strings.Join(s.parts, " ")
	s.parts = s.parts[:0]
	s.open = false
	return flatten(text)
}

// flatten strips markup tags and collapses whitespace runs.
func flatten(text string) string {
	text = markupRe.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
