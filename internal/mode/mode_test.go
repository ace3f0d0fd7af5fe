package mode

import "testing"

func TestModeConstruction(t *testing.T) {
	empty := Mode{}
	if !empty.IsEmpty() {
		t.Errorf("zero value Mode must be empty")
	}
	single := New(map[string]string{"robot": "first"})
	if single.IsEmpty() {
		t.Errorf("non-empty Mode reported empty")
	}
	multi := New(map[string]string{"phase": "preparing", "source": "table"})
	if len(multi.Values()) != 2 {
		t.Errorf("expected 2 values, got %d", len(multi.Values()))
	}
}

func TestModeEqualAndOrdering(t *testing.T) {
	state1 := New(map[string]string{"robot": "first"})
	state2 := New(map[string]string{"robot": "first"})
	state3 := New(map[string]string{"robot": "second"})
	state4 := New(map[string]string{"other": "first"})

	if eq, err := state1.Equal(state2); err != nil || !eq {
		t.Errorf("state1 should equal state2")
	}
	if !state1.Less(state3) {
		t.Errorf("state1 should sort before state3")
	}
	if !state4.Less(state3) {
		t.Errorf("state4 should sort before state3")
	}
	if eq, err := state1.Equal(state3); err == nil && eq {
		t.Errorf("state1 should not equal state3")
	}
	if _, err := state4.Equal(state2); err == nil {
		t.Errorf("expected key-set mismatch error comparing state4 and state2")
	}
	if _, err := state2.Equal(state4); err == nil {
		t.Errorf("expected key-set mismatch error comparing state2 and state4")
	}
}

func robotModes(names ...string) []Mode {
	modes := make([]Mode, len(names))
	for i, n := range names {
		modes[i] = New(map[string]string{"robot": n})
	}
	return modes
}

func TestTraceCreation(t *testing.T) {
	m := robotModes("first", "second", "third", "fourth")
	first, second, third := m[0], m[1], m[2]

	trace := Trace{}.PushFrontDefault(second).PushBack(first, 1.0).PushBack(second, 1.0).PushFrontDefault(third)
	if trace.Size() != 4 {
		t.Fatalf("expected size 4, got %d", trace.Size())
	}
	if !trace.Contains(first) || !trace.Contains(second) || !trace.Contains(third) {
		t.Errorf("expected trace to contain first, second, third")
	}
	if trace.Contains(m[3]) {
		t.Errorf("expected trace not to contain fourth")
	}
	wantOrder := []Mode{third, second, first, second}
	for i, w := range wantOrder {
		if eq, err := trace.At(i).Mode.Equal(w); err != nil || !eq {
			t.Errorf("entry %d: got %v, want %v", i, trace.At(i).Mode, w)
		}
	}
	if trace.Likelihood() != 1 {
		t.Errorf("expected likelihood 1, got %v", trace.Likelihood())
	}
}

func TestTraceCompare(t *testing.T) {
	m := robotModes("first", "second", "third")
	first, second, third := m[0], m[1], m[2]

	trace1 := Trace{}.PushBack(first, 1.0).PushBack(second, 1.0).PushBack(third, 0.5)
	trace2 := Trace{}.PushBack(first, 1.0).PushBack(second, 1.0).PushBack(third, 1.0)
	trace3 := Trace{}.PushBack(first, 1.0).PushBack(second, 1.0).PushBack(third, 1.0)
	trace4 := Trace{}.PushBack(second, 1.0).PushBack(first, 1.0).PushBack(third, 0.5)

	if trace1.Equal(trace2) {
		t.Errorf("trace1 should not equal trace2")
	}
	if trace1.Equal(trace4) {
		t.Errorf("trace1 should not equal trace4")
	}
	if !trace2.Equal(trace3) {
		t.Errorf("trace2 should equal trace3")
	}
}

func TestTraceHasLooped(t *testing.T) {
	m := robotModes("first", "second", "third")
	first, second, third := m[0], m[1], m[2]

	cases := []struct {
		name string
		t    Trace
		want bool
	}{
		{"empty", Trace{}, false},
		{"single", Trace{}.PushBackDefault(first), false},
		{"two distinct", Trace{}.PushBackDefault(first).PushBackDefault(second), false},
		{"immediate repeat", Trace{}.PushBackDefault(first).PushBackDefault(first), true},
		{"repeat with gap", Trace{}.PushBackDefault(first).PushBackDefault(second).PushBackDefault(first), true},
		{"repeat at end", Trace{}.PushBackDefault(first).PushBackDefault(second).PushBackDefault(third).PushBackDefault(second), true},
		{"repeat then a new mode", Trace{}.PushBackDefault(first).PushBackDefault(second).PushBackDefault(first).PushBackDefault(third), true},
	}
	for _, c := range cases {
		if got := c.t.HasLooped(); got != c.want {
			t.Errorf("%s: HasLooped() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestTraceMerge(t *testing.T) {
	m := robotModes("first", "second", "third", "fourth", "fifth")
	first, second, third, fourth := m[0], m[1], m[2], m[3]

	trace1 := Trace{}.PushBack(first, 1.0).PushBack(second, 1.0).PushBack(third, 0.5)
	trace2 := Trace{}.PushBack(second, 1.0).PushBack(fourth, 0.8)

	merge12 := Merge(trace1, trace2)
	if merge12.Likelihood() != 0.8 {
		t.Errorf("merge12.Likelihood() = %v, want 0.8", merge12.Likelihood())
	}
	if merge12.Size() != 5 {
		t.Errorf("merge12.Size() = %d, want 5", merge12.Size())
	}

	merge21 := Merge(trace2, trace1)
	if merge21.Likelihood() != 0.5 {
		t.Errorf("merge21.Likelihood() = %v, want 0.5", merge21.Likelihood())
	}
	if merge21.Size() != 5 {
		t.Errorf("merge21.Size() = %d, want 5", merge21.Size())
	}
}

func TestTraceIndexes(t *testing.T) {
	m := robotModes("first", "second", "third", "fourth", "fifth")
	first, second, third, fourth, fifth := m[0], m[1], m[2], m[3], m[4]

	trace := Trace{}.PushBackDefault(first).PushBackDefault(second).PushBackDefault(third).PushBackDefault(second).PushBackDefault(fifth)

	if trace.ForwardIndex(fourth) != -1 || trace.BackwardIndex(fourth) != -1 {
		t.Errorf("fourth should not be found")
	}
	if trace.ForwardIndex(third) != 2 || trace.BackwardIndex(third) != 2 {
		t.Errorf("third should be at index 2")
	}
	if trace.ForwardIndex(first) != 0 || trace.BackwardIndex(first) != 0 {
		t.Errorf("first should be at index 0")
	}
	if trace.ForwardIndex(second) != 1 {
		t.Errorf("forward index of second should be 1, got %d", trace.ForwardIndex(second))
	}
	if trace.BackwardIndex(second) != 3 {
		t.Errorf("backward index of second should be 3, got %d", trace.BackwardIndex(second))
	}
}

func TestTraceReduceBetween(t *testing.T) {
	m := robotModes("first", "second", "third", "fourth")
	first, second, third, fourth := m[0], m[1], m[2], m[3]

	base := Trace{}.PushBackDefault(first).PushBackDefault(second).PushBackDefault(third)

	if _, err := base.ReduceBetween(first, fourth); err == nil {
		t.Errorf("expected failure reducing between first and absent fourth")
	}
	if _, err := base.ReduceBetween(fourth, third); err == nil {
		t.Errorf("expected failure reducing between absent fourth and third")
	}
	if _, err := base.ReduceBetween(second, first); err == nil {
		t.Errorf("expected failure reducing with a after b")
	}

	r1, err := base.ReduceBetween(first, third)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.Size() != 3 {
		t.Errorf("expected size 3, got %d", r1.Size())
	}
	r1b, err := r1.ReduceBetween(first, first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1b.Size() != 1 {
		t.Errorf("expected size 1, got %d", r1b.Size())
	}
	if eq, _ := r1b.EndingMode().Equal(first); !eq {
		t.Errorf("expected ending mode first")
	}

	r2, err := base.ReduceBetween(first, second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r2.Size() != 2 {
		t.Errorf("expected size 2, got %d", r2.Size())
	}
	if eq, _ := r2.StartingMode().Equal(first); !eq {
		t.Errorf("expected starting mode first")
	}
	if eq, _ := r2.EndingMode().Equal(second); !eq {
		t.Errorf("expected ending mode second")
	}

	r3, err := base.ReduceBetween(second, third)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eq, _ := r3.StartingMode().Equal(second); !eq {
		t.Errorf("expected starting mode second")
	}
	if eq, _ := r3.EndingMode().Equal(third); !eq {
		t.Errorf("expected ending mode third")
	}
	if r3.Size() != 2 {
		t.Errorf("expected size 2, got %d", r3.Size())
	}
}

func TestTraceNextModesPatternMatching(t *testing.T) {
	m := robotModes("a", "b", "c", "d")
	a, b, c, d := m[0], m[1], m[2], m[3]

	// abcabd -> no earlier occurrence of any suffix of "d" precedes it -> {}
	next1 := Trace{}.PushBackDefault(a).PushBackDefault(b).PushBackDefault(c).PushBackDefault(a).PushBackDefault(b).PushBackDefault(d).NextModes()
	if len(next1) != 0 {
		t.Errorf("next1: expected no predictions, got %v", next1)
	}

	// abcabdacbcabcdac -> suffix "ac" recurs once earlier, followed by b -> {b:1.0}
	next2 := Trace{}.PushBackDefault(a).PushBackDefault(b).PushBackDefault(c).PushBackDefault(a).PushBackDefault(b).
		PushBackDefault(d).PushBackDefault(a).PushBackDefault(c).PushBackDefault(b).PushBackDefault(c).PushBackDefault(a).
		PushBackDefault(b).PushBackDefault(c).PushBackDefault(d).PushBackDefault(a).PushBackDefault(c).NextModes()
	if len(next2) != 1 {
		t.Fatalf("next2: expected 1 prediction, got %d", len(next2))
	}
	if p, ok := next2.Lookup(b); !ok || p != 1.0 {
		t.Errorf("next2: expected b:1.0, got %v ok=%v", p, ok)
	}

	// abcbacabcbacbacb -> suffix "cb" recurs 3 times earlier, always
	// followed by a -> {a:1.0}
	next3 := Trace{}.PushBackDefault(a).PushBackDefault(b).PushBackDefault(c).PushBackDefault(b).PushBackDefault(a).
		PushBackDefault(c).PushBackDefault(a).PushBackDefault(b).PushBackDefault(c).PushBackDefault(b).PushBackDefault(a).
		PushBackDefault(c).PushBackDefault(b).PushBackDefault(a).PushBackDefault(c).PushBackDefault(b).NextModes()
	if len(next3) != 1 {
		t.Fatalf("next3: expected 1 prediction, got %d", len(next3))
	}
	if p, ok := next3.Lookup(a); !ok || p != 1.0 {
		t.Errorf("next3: expected a:1.0, got %v ok=%v", p, ok)
	}

	// abdabcabcdabadbc -> suffix "bc" recurs twice earlier, once
	// followed by a and once by d -> {a:0.5,d:0.5}
	next4 := Trace{}.PushBackDefault(a).PushBackDefault(b).PushBackDefault(d).PushBackDefault(a).PushBackDefault(b).
		PushBackDefault(c).PushBackDefault(a).PushBackDefault(b).PushBackDefault(c).PushBackDefault(d).PushBackDefault(a).
		PushBackDefault(b).PushBackDefault(a).PushBackDefault(d).PushBackDefault(b).PushBackDefault(c).NextModes()
	if len(next4) != 2 {
		t.Fatalf("next4: expected 2 predictions, got %d", len(next4))
	}
	if p, ok := next4.Lookup(a); !ok || p != 0.5 {
		t.Errorf("next4: expected a:0.5, got %v ok=%v", p, ok)
	}
	if p, ok := next4.Lookup(d); !ok || p != 0.5 {
		t.Errorf("next4: expected d:0.5, got %v ok=%v", p, ok)
	}

	// dcbadcbdcbdcbcdcb -> suffix "dcb" recurs at 4 earlier positions -> {a:0.25,c:0.25,d:0.5}
	trace5 := Trace{}.PushBackDefault(d).PushBackDefault(c).PushBackDefault(b).PushBackDefault(a).PushBackDefault(d).
		PushBackDefault(c).PushBackDefault(b).PushBackDefault(d).PushBackDefault(c).PushBackDefault(b).PushBackDefault(d).
		PushBackDefault(c).PushBackDefault(b).PushBackDefault(c).PushBackDefault(d).PushBackDefault(c).PushBackDefault(b)
	next5 := trace5.NextModes()
	if len(next5) != 3 {
		t.Fatalf("next5: expected 3 predictions, got %d", len(next5))
	}
	wantProb := map[string]float64{"a": 0.25, "c": 0.25, "d": 0.5}
	for name, want := range wantProb {
		mm := New(map[string]string{"robot": name})
		if p, ok := next5.Lookup(mm); !ok || p != want {
			t.Errorf("next5: %s got %v ok=%v, want %v", name, p, ok, want)
		}
	}

	// Chaining each of next5's predicted modes onto trace5 narrows the
	// prediction at each step, down to a final repeated tie.
	trace5a := trace5.PushBack(a, 0.25)
	trace5c := trace5.PushBack(c, 0.25)
	trace5d := trace5.PushBack(d, 0.5)

	next5a, next5c, next5d := trace5a.NextModes(), trace5c.NextModes(), trace5d.NextModes()
	if len(next5a) != 1 || len(next5c) != 1 || len(next5d) != 1 {
		t.Fatalf("next5a/c/d: expected single predictions, got %d/%d/%d", len(next5a), len(next5c), len(next5d))
	}
	if _, ok := next5a.Lookup(d); !ok {
		t.Errorf("next5a: expected d")
	}
	if _, ok := next5c.Lookup(d); !ok {
		t.Errorf("next5c: expected d")
	}
	if _, ok := next5d.Lookup(c); !ok {
		t.Errorf("next5d: expected c")
	}

	trace5ad := trace5a.PushBackDefault(d)
	trace5cd := trace5c.PushBackDefault(d)
	trace5dc := trace5d.PushBackDefault(c)
	if l := trace5ad.Likelihood(); l != 0.25 {
		t.Errorf("trace5ad.Likelihood() = %v, want 0.25", l)
	}
	if l := trace5cd.Likelihood(); l != 0.25 {
		t.Errorf("trace5cd.Likelihood() = %v, want 0.25", l)
	}
	if l := trace5dc.Likelihood(); l != 0.5 {
		t.Errorf("trace5dc.Likelihood() = %v, want 0.5", l)
	}

	next5ad, next5cd, next5dc := trace5ad.NextModes(), trace5cd.NextModes(), trace5dc.NextModes()
	if len(next5ad) != 1 || len(next5cd) != 1 || len(next5dc) != 1 {
		t.Fatalf("next5ad/cd/dc: expected single predictions, got %d/%d/%d", len(next5ad), len(next5cd), len(next5dc))
	}
	if _, ok := next5ad.Lookup(c); !ok {
		t.Errorf("next5ad: expected c")
	}
	if _, ok := next5cd.Lookup(c); !ok {
		t.Errorf("next5cd: expected c")
	}
	if _, ok := next5dc.Lookup(b); !ok {
		t.Errorf("next5dc: expected b")
	}

	trace5adc := trace5ad.PushBackDefault(c)
	trace5cdc := trace5cd.PushBackDefault(c)
	trace5dcb := trace5dc.PushBackDefault(b)

	next5adc, next5cdc, next5dcb := trace5adc.NextModes(), trace5cdc.NextModes(), trace5dcb.NextModes()
	if len(next5adc) != 1 {
		t.Errorf("next5adc: expected 1 prediction, got %d", len(next5adc))
	}
	if len(next5cdc) != 1 {
		t.Errorf("next5cdc: expected 1 prediction, got %d", len(next5cdc))
	}
	if len(next5dcb) != 2 {
		t.Errorf("next5dcb: expected 2 predictions, got %d", len(next5dcb))
	}
	if _, ok := next5adc.Lookup(b); !ok {
		t.Errorf("next5adc: expected b")
	}
	if _, ok := next5cdc.Lookup(b); !ok {
		t.Errorf("next5cdc: expected b")
	}
	cProb, cOK := next5dcb.Lookup(c)
	dProb, dOK := next5dcb.Lookup(d)
	if !cOK || !dOK {
		t.Fatalf("next5dcb: expected both c and d, got c=%v(%v) d=%v(%v)", cProb, cOK, dProb, dOK)
	}

	trace5dcbc := trace5dcb.PushBack(c, cProb)
	if l := trace5dcbc.Likelihood(); l != 0.25 {
		t.Errorf("trace5dcbc.Likelihood() = %v, want 0.25", l)
	}
	trace5dcbd := trace5dcb.PushBack(d, dProb)
	if l := trace5dcbd.Likelihood(); l != 0.25 {
		t.Errorf("trace5dcbd.Likelihood() = %v, want 0.25", l)
	}
}
