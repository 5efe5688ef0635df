package store

import "testing"

func TestInspectGuard_RejectsImmediateRepeat(t *testing.T) {
	g := NewInspectGuard()
	g.Record([]string{"a.go", "b.go"})

	if !g.Check([]string{"b.go", "a.go"}) {
		t.Error("expected repeat of the same set (different order) to be rejected")
	}
}

func TestInspectGuard_AllowsDifferentSet(t *testing.T) {
	g := NewInspectGuard()
	g.Record([]string{"a.go", "b.go"})

	if g.Check([]string{"a.go", "c.go"}) {
		t.Error("a different path set should not be rejected")
	}
}

func TestInspectGuard_NonInspectIterationClearsGuard(t *testing.T) {
	g := NewInspectGuard()
	g.Record([]string{"a.go", "b.go"})
	g.Record(nil) // an intervening non-INSPECT iteration

	if g.Check([]string{"a.go", "b.go"}) {
		t.Error("once a non-INSPECT iteration intervenes, the same set should be inspectable again")
	}
}

func TestInspectGuard_FirstInspectionNeverRejected(t *testing.T) {
	g := NewInspectGuard()
	if g.Check([]string{"a.go"}) {
		t.Error("the first inspection of a session should never be rejected")
	}
}
