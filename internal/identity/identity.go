package identity

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Identity is the normalized customer name used as the dedup key. Two raw
// names differing only by surrounding whitespace or letter case collapse to
// the same Identity.
type Identity string

// Normalizer maps a raw cell value to its canonical identity form.
type Normalizer func(string) Identity

var upper = cases.Upper(language.Und)

// Default trims surrounding whitespace and uppercases locale-independently.
func Default(raw string) Identity {
	return Identity(upper.String(strings.TrimSpace(raw)))
}

// TrimOnly trims surrounding whitespace but keeps the original casing, for
// deployments where folder names are case-sensitive by policy.
func TrimOnly(raw string) Identity {
	return Identity(strings.TrimSpace(raw))
}

// Set is an unordered collection of identities.
type Set map[Identity]struct{}

func NewSet(ids ...Identity) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s Set) Add(id Identity) {
	s[id] = struct{}{}
}

func (s Set) Has(id Identity) bool {
	_, ok := s[id]
	return ok
}

// Union merges other into s.
func (s Set) Union(other Set) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Sorted returns the identities in lexical order. Ordering is for
// deterministic logging and provisioning only; it carries no semantics.
func (s Set) Sorted() []Identity {
	out := make([]Identity, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
