// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/declmap/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a registry into TOON format: one constructs table in
// encounter order, followed by a count per kind.
func Encode(root string, reg *model.Registry) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(root)))

	var rows [][]string
	for _, c := range reg.All() {
		rows = append(rows, []string{
			string(c.Kind),
			c.Name,
			string(c.Access),
			filepath.ToSlash(c.File),
			strconv.Itoa(c.Line),
			c.Summary,
		})
	}
	parts = append(parts, formatTabular("constructs", []string{"kind", "name", "access", "file", "line", "summary"}, rows))

	groups := reg.ByKind()
	var countRows [][]string
	for _, k := range model.Kinds {
		countRows = append(countRows, []string{string(k), strconv.Itoa(len(groups[k]))})
	}
	parts = append(parts, formatTabular("kinds", []string{"kind", "count"}, countRows))

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
