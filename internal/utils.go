package internal

import (
	"cmp"
	"slices"
)

// SortedUniques invokes collect with an emit func and returns the distinct values emitted, sorted.
// This keeps traversal logic in an inline func literal while exposing simple set semantics.
func SortedUniques[T cmp.Ordered](collect func(emit func(T))) []T {
	set := make(map[T]struct{})
	collect(func(v T) {
		set[v] = struct{}{}
	})

	values := make([]T, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	slices.Sort(values)
	return values
}
