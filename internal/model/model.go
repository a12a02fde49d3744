// Package model defines core data structures for declmap.
package model

// Kind is the kind of a declared construct.
type Kind string

const (
	Class     Kind = "class"
	Struct    Kind = "struct"
	Enum      Kind = "enum"
	Interface Kind = "interface"
)

// Kinds lists every construct kind in matching priority order.
var Kinds = []Kind{Class, Struct, Enum, Interface}

// Keyword returns the source keyword that introduces a construct of kind k.
func (k Kind) Keyword() string {
	return string(k)
}

// Access is the access qualifier of a construct.
type Access string

const (
	Public    Access = "public"
	Private   Access = "private"
	Protected Access = "protected"
	Internal  Access = "internal"
)

// Construct is a single top-level declaration extracted from source text.
type Construct struct {
	Name    string
	Kind    Kind
	Access  Access
	Summary string // empty when no doc summary preceded the declaration
	File    string
	Line    int
}

// Registry is the ordered list of distinct extracted constructs.
// Entries keep first-encounter order.
type Registry struct {
	items []Construct
}

// Add appends c to the registry.
func (r *Registry) Add(c Construct) {
	r.items = append(r.items, c)
}

// All returns every construct in encounter order.
func (r *Registry) All() []Construct {
	return r.items
}

// Len returns the number of registered constructs.
func (r *Registry) Len() int {
	return len(r.items)
}

// ByKind groups the registry by construct kind, preserving encounter order
// within each group. Kinds with no constructs are absent from the map.
func (r *Registry) ByKind() map[Kind][]Construct {
	groups := make(map[Kind][]Construct)
	for _, c := range r.items {
		groups[c.Kind] = append(groups[c.Kind], c)
	}
	return groups
}
