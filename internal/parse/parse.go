// Package parse lists type declarations with a tree-sitter grammar. It backs
// the cross-check of the heuristic scanner and is never used to build the
// registry itself.
package parse

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/declmap/internal/model"
)

var captureMap = map[string]model.Kind{
	"definition.class":     model.Class,
	"definition.struct":    model.Struct,
	"definition.enum":      model.Enum,
	"definition.interface": model.Interface,
}

// Declarations parses a source file and returns the declarations matched by
// query, in source order. Access and Summary are left empty.
// The parser must be created for the correct language.
func Declarations(parser *sitter.Parser, query *sitter.Query, source []byte, filePath string) ([]model.Construct, error) {
	if len(source) == 0 {
		return nil, nil
	}

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var decls []model.Construct

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		var nameNode *sitter.Node
		var kind model.Kind

		for _, c := range match.Captures {
			cname := query.CaptureNameForId(c.Index)
			if cname == "name" {
				nameNode = c.Node
			} else if k, ok := captureMap[cname]; ok {
				kind = k
			}
		}

		if nameNode == nil || kind == "" {
			continue
		}

		decls = append(decls, model.Construct{
			Name: nameNode.Content(source),
			Kind: kind,
			File: filePath,
			Line: int(nameNode.StartPoint().Row) + 1,
		})
	}

	sort.SliceStable(decls, func(i, j int) bool {
		return decls[i].Line < decls[j].Line
	})
	return decls, nil
}

// Mismatch is a declaration found by only one of the two extractors.
type Mismatch struct {
	Construct model.Construct
	// Missing is true when the grammar saw the declaration but the
	// heuristic scan did not.
	Missing bool
}

func (m Mismatch) String() string {
	c := m.Construct
	if m.Missing {
		return fmt.Sprintf("%s:%d: %s %s not found by scanner", c.File, c.Line, c.Kind, c.Name)
	}
	return fmt.Sprintf("%s:%d: %s %s not confirmed by parser", c.File, c.Line, c.Kind, c.Name)
}

// Compare reports the (kind, name) pairs present in only one of scanned and
// parsed. Repeated declarations count once.
func Compare(scanned, parsed []model.Construct) []Mismatch {
	type key struct {
		kind model.Kind
		name string
	}
	index := func(cs []model.Construct) map[key]struct{} {
		m := make(map[key]struct{}, len(cs))
		for _, c := range cs {
			m[key{c.Kind, c.Name}] = struct{}{}
		}
		return m
	}
	inScan, inParse := index(scanned), index(parsed)

	var out []Mismatch
	seen := make(map[key]struct{})
	for _, c := range scanned {
		k := key{c.Kind, c.Name}
		if _, ok := inParse[k]; ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, Mismatch{Construct: c})
	}
	for _, c := range parsed {
		k := key{c.Kind, c.Name}
		if _, ok := inScan[k]; ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, Mismatch{Construct: c, Missing: true})
	}
	return out
}
