package table

import "strings"

// HeaderUnion is an ordered set of column names. Names keep the position at
// which they were first added and are never moved or removed.
type HeaderUnion struct {
	names []string
	index map[string]int
}

// NewHeaderUnion returns an empty union, optionally seeded with names.
func NewHeaderUnion(names ...string) *HeaderUnion {
	h := &HeaderUnion{index: make(map[string]int)}
	h.AddAll(names)
	return h
}

// Add trims name and appends it when non-empty and not yet present.
// It reports whether the name was appended.
func (h *HeaderUnion) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if _, ok := h.index[name]; ok {
		return false
	}
	h.index[name] = len(h.names)
	h.names = append(h.names, name)
	return true
}

// AddAll adds names in order and returns how many were new.
func (h *HeaderUnion) AddAll(names []string) int {
	n := 0
	for _, name := range names {
		if h.Add(name) {
			n++
		}
	}
	return n
}

// Contains reports membership of an already-trimmed name.
func (h *HeaderUnion) Contains(name string) bool {
	_, ok := h.index[name]
	return ok
}

// Index returns the position of name in the union.
func (h *HeaderUnion) Index(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}

// Len returns the number of names in the union.
func (h *HeaderUnion) Len() int { return len(h.names) }

// Names returns a copy of the names in first-seen order.
func (h *HeaderUnion) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}
