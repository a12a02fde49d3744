package scan

import (
	"regexp"
	"strings"

	"github.com/phobologic/declmap/internal/model"
)

type kindPattern struct {
	kind model.Kind
	re   *regexp.Regexp
}

// patterns holds one declaration pattern per kind, in model.Kinds order.
var patterns = func() []kindPattern {
	ps := make([]kindPattern, 0, len(model.Kinds))
	for _, k := range model.Kinds {
		ps = append(ps, kindPattern{
			kind: k,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(k.Keyword()) + `\s+(\w+)`),
		})
	}
	return ps
}()

var (
	keywordRe = func() *regexp.Regexp {
		words := make([]string, 0, len(model.Kinds))
		for _, k := range model.Kinds {
			words = append(words, regexp.QuoteMeta(k.Keyword()))
		}
		return regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)\b`)
	}()
	accessRe = regexp.MustCompile(`^\s*(public|private|protected|internal)\b`)
)

var accessWords = map[string]model.Access{
	"public":    model.Public,
	"private":   model.Private,
	"protected": model.Protected,
	"internal":  model.Internal,
}

// Match reports the first construct declared on line, trying kinds in
// priority order. A line declares at most one construct.
func Match(line string) (model.Kind, string, bool) {
	for _, p := range patterns {
		if m := p.re.FindStringSubmatch(line); m != nil {
			return p.kind, m[1], true
		}
	}
	return "", "", false
}

// AccessOf returns the access qualifier at the start of line,
// or model.Private when there is none.
func AccessOf(line string) model.Access {
	m := accessRe.FindStringSubmatch(line)
	if m == nil {
		return model.Private
	}
	return accessWords[m[1]]
}

// keywordIndex returns the byte offset of the earliest construct keyword
// on line, or -1.
func keywordIndex(line string) int {
	loc := keywordRe.FindStringIndex(line)
	if loc == nil {
		return -1
	}
	return loc[0]
}
