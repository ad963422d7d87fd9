package counter

import "testing"

func TestState_ApplySameValueIsNoop(t *testing.T) {
	t.Parallel()

	s := State{Current: 10, Previous: 3}
	next, changed := s.Apply(10)
	if changed {
		t.Fatal("changed = true, want false")
	}
	if next != s {
		t.Fatalf("state = %+v, want %+v", next, s)
	}
}

func TestState_ApplyShiftsCurrentToPrevious(t *testing.T) {
	t.Parallel()

	next, changed := State{}.Apply(7)
	if !changed {
		t.Fatal("changed = false, want true")
	}
	if next != (State{Current: 7, Previous: 0}) {
		t.Fatalf("state = %+v", next)
	}
	if got := Pad(next.Current, 5); got != "00007" {
		t.Fatalf("rendered %q, want 00007", got)
	}
}

func TestStore_Apply(t *testing.T) {
	t.Parallel()

	st := NewStore()
	if st.Snapshot() != (State{}) {
		t.Fatalf("initial = %+v", st.Snapshot())
	}
	if !st.Apply(5) {
		t.Fatal("first apply reported no change")
	}
	if st.Apply(5) {
		t.Fatal("repeat apply reported a change")
	}
	if got := st.Snapshot(); got != (State{Current: 5}) {
		t.Fatalf("snapshot = %+v", got)
	}
}
