// Package scan extracts top-level type declarations from C-family source
// text with a line-oriented heuristic scanner.
//
// Each file is scanned with its own State. Deduplication of partial class
// declarations is run scoped and applied separately by a Deduplicator, so
// files may be scanned independently and merged in discovery order.
package scan

import (
	"strings"

	"github.com/phobologic/declmap/internal/model"
)

// State is the per-file scanner state: block-comment tracking, the summary
// accumulator and the summaries waiting for the next declaration.
type State struct {
	Path string

	comments Comments
	docs     Summaries
	pending  []string
}

// NewState returns a fresh scanner state for the file at path.
func NewState(path string) *State {
	return &State{Path: path}
}

// Pending returns the summary text that would attach to the next construct.
func (s *State) Pending() string {
	return strings.Join(s.pending, " ")
}

// Line feeds line number n (1-based) to the scanner and returns the construct
// it declares, if any. The pending summary is consumed by that construct.
func (s *State) Line(n int, line string) (model.Construct, bool) {
	if text, ok := s.docs.Observe(line); ok && text != "" {
		s.pending = append(s.pending, text)
	}

	if s.comments.Classify(line) {
		return model.Construct{}, false
	}

	kind, name, ok := Match(line)
	if !ok {
		return model.Construct{}, false
	}

	c := model.Construct{
		Name:    name,
		Kind:    kind,
		Access:  AccessOf(line),
		Summary: s.Pending(),
		File:    s.Path,
		Line:    n,
	}
	s.pending = s.pending[:0]
	return c, true
}

// File scans source and returns its constructs in line order. Partial class
// declarations are not collapsed here; see Merge.
func File(source []byte, path string) []model.Construct {
	st := NewState(path)

	var out []model.Construct
	for i, line := range Lines(string(source)) {
		if c, ok := st.Line(i+1, line); ok {
			out = append(out, c)
		}
	}
	return out
}

// Lines splits text on newlines, dropping a trailing carriage return from
// each line and the empty element after a final newline.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
