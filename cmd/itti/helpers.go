package main

import (
	"sort"

	"itti/internal/identity"
)

func sortedIdentityKeys[V any](m map[identity.Identity]V) []identity.Identity {
	keys := make([]identity.Identity, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
