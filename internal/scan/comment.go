package scan

import "strings"

const (
	lineComment = "//"
	blockOpen   = "/*"
	blockClose  = "*/"
)

// Comments tracks whether the scanner is inside a block comment.
// The zero value is ready to use; use one per file.
type Comments struct {
	inBlock bool
}

// InBlock reports whether a block comment is still open after the last
// classified line.
func (c *Comments) InBlock() bool {
	return c.inBlock
}

// Classify updates the block-comment state for line and reports whether the
// line must be excluded from construct matching.
//
// A line is suppressed when it opens a block comment, lies inside one (the
// closing line included), starts with a line comment, or carries a line
// comment before the first construct keyword. A comment trailing a
// declaration does not suppress it.
func (c *Comments) Classify(line string) bool {
	trimmed := strings.TrimSpace(line)
	suppress := false

	rest := trimmed
	if i := strings.Index(trimmed, blockOpen); i >= 0 {
		c.inBlock = true
		suppress = true
		rest = trimmed[i+len(blockOpen):]
	}

	if c.inBlock {
		suppress = true
		if strings.Contains(rest, blockClose) {
			c.inBlock = false
		}
	}

	if strings.HasPrefix(trimmed, lineComment) {
		return true
	}

	if i := strings.Index(trimmed, lineComment); i >= 0 {
		if k := keywordIndex(trimmed); k >= 0 && i < k {
			suppress = true
		}
	}

	return suppress
}
