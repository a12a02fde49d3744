package scan

import "github.com/phobologic/declmap/internal/model"

// Deduplicator remembers class names seen during one run. A class declared
// again (a partial declaration, possibly in another file) is not admitted.
// Other kinds are never deduplicated.
type Deduplicator struct {
	seen map[string]struct{}
}

// NewDeduplicator returns an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Admit reports whether a construct of kind named name should be registered.
func (d *Deduplicator) Admit(kind model.Kind, name string) bool {
	if kind != model.Class {
		return true
	}
	if _, ok := d.seen[name]; ok {
		return false
	}
	d.seen[name] = struct{}{}
	return true
}

// Merge adds the admitted constructs to reg in order and returns how many
// were added.
func Merge(d *Deduplicator, reg *model.Registry, constructs []model.Construct) int {
	added := 0
	for _, c := range constructs {
		if d.Admit(c.Kind, c.Name) {
			reg.Add(c)
			added++
		}
	}
	return added
}
