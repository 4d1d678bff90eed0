package textnorm

import (
	"sort"
	"strings"
)

// MatchKind reports which pipeline stage produced a match.
type MatchKind int

const (
	// MatchNone means no stage matched
	MatchNone MatchKind = iota

	// MatchExact means the raw names were equal
	MatchExact

	// MatchNormalized means the normalized names were equal
	MatchNormalized

	// MatchContains means one normalized name contained the other
	MatchContains
)

// String returns the stage name
func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchNormalized:
		return "normalized"
	case MatchContains:
		return "contains"
	default:
		return "none"
	}
}

type entry[T any] struct {
	raw        string
	normalized string
	value      T
}

// Matcher resolves names against a registered candidate set through an
// ordered pipeline: exact, normalized-exact, normalized-substring. Each
// stage is independently callable. A Matcher is scoped to one
// reconciliation run and is not safe for concurrent mutation.
type Matcher[T any] struct {
	entries []entry[T]
	byRaw   map[string]int
	byNorm  map[string]int
}

// NewMatcher returns an empty matcher.
func NewMatcher[T any]() *Matcher[T] {
	return &Matcher[T]{
		byRaw:  make(map[string]int),
		byNorm: make(map[string]int),
	}
}

// Add registers a candidate under its name. Later registrations of the
// same name win, matching upsert semantics of the resolution caches.
func (m *Matcher[T]) Add(name string, value T) {
	e := entry[T]{raw: name, normalized: Normalize(name), value: value}
	if i, ok := m.byRaw[name]; ok {
		m.entries[i] = e
		m.byNorm[e.normalized] = i
		return
	}
	m.entries = append(m.entries, e)
	i := len(m.entries) - 1
	m.byRaw[name] = i
	if _, dup := m.byNorm[e.normalized]; !dup {
		m.byNorm[e.normalized] = i
	}
}

// Len returns the number of registered candidates.
func (m *Matcher[T]) Len() int {
	return len(m.entries)
}

// MatchExact runs only the exact stage.
func (m *Matcher[T]) MatchExact(name string) (T, bool) {
	if i, ok := m.byRaw[name]; ok {
		return m.entries[i].value, true
	}
	var zero T
	return zero, false
}

// MatchNormalized runs only the normalized-equality stage.
func (m *Matcher[T]) MatchNormalized(name string) (T, bool) {
	if i, ok := m.byNorm[Normalize(name)]; ok {
		return m.entries[i].value, true
	}
	var zero T
	return zero, false
}

// MatchContains runs only the normalized-substring stage. Containment is
// checked in both directions; candidates are scanned longest normalized
// name first so the most specific candidate wins.
func (m *Matcher[T]) MatchContains(name string) (T, bool) {
	n := Normalize(name)
	var zero T
	if n == "" {
		return zero, false
	}

	order := make([]int, len(m.entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(m.entries[order[a]].normalized) > len(m.entries[order[b]].normalized)
	})

	for _, i := range order {
		cand := m.entries[i].normalized
		if cand == "" {
			continue
		}
		if containsEither(cand, n) {
			return m.entries[i].value, true
		}
	}
	return zero, false
}

// Match runs the full pipeline and reports which stage hit.
func (m *Matcher[T]) Match(name string) (T, MatchKind, bool) {
	if v, ok := m.MatchExact(name); ok {
		return v, MatchExact, true
	}
	if v, ok := m.MatchNormalized(name); ok {
		return v, MatchNormalized, true
	}
	if v, ok := m.MatchContains(name); ok {
		return v, MatchContains, true
	}
	var zero T
	return zero, MatchNone, false
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
