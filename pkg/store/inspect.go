package store

import "sort"

// InspectGuard refuses an INSPECT action that names exactly the same set of
// paths as the immediately preceding iteration's INSPECT (spec §4.4, §8
// invariant 6). Order does not matter: {a,b} and {b,a} are the same set.
type InspectGuard struct {
	last []string
}

// NewInspectGuard returns a guard with no prior inspection recorded.
func NewInspectGuard() *InspectGuard {
	return &InspectGuard{}
}

// Check reports whether paths is a forbidden immediate repeat of the
// previous inspection. It does not mutate state; call Record after the
// inspection actually runs.
func (g *InspectGuard) Check(paths []string) bool {
	return sameSet(g.last, paths)
}

// Record replaces the guard's memory of "the previous iteration's
// inspection" with paths. Call this once per completed iteration — whether
// or not it contained an INSPECT — so a non-INSPECT iteration correctly
// clears the guard rather than letting a stale set linger across it.
func (g *InspectGuard) Record(paths []string) {
	g.last = append([]string(nil), paths...)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string(nil), a...)
	sb := append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}
