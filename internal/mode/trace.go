package mode

import (
	"fmt"

	"github.com/elektrokombinacija/cobot-guard/internal/cgerr"
)

// Entry is a single (mode, likelihood) position in a ModeTrace.
type Entry struct {
	Mode       Mode
	Likelihood float64
}

// Trace is an ordered sequence of (mode, likelihood) entries. The
// overall likelihood of the trace is the product of its entries'
// likelihoods. The zero value is the empty trace.
type Trace struct {
	entries []Entry
}

// Size returns the number of entries in the trace.
func (t Trace) Size() int { return len(t.entries) }

// At returns the entry at position i.
func (t Trace) At(i int) Entry { return t.entries[i] }

// StartingMode returns the mode of the first entry. The caller must
// ensure the trace is non-empty.
func (t Trace) StartingMode() Mode { return t.entries[0].Mode }

// EndingMode returns the mode of the last entry. The caller must
// ensure the trace is non-empty.
func (t Trace) EndingMode() Mode { return t.entries[len(t.entries)-1].Mode }

// PushBack appends mode with likelihood l (defaulting to 1 via
// PushBackDefault) and returns the extended trace for chaining; t
// itself is left unchanged.
func (t Trace) PushBack(m Mode, l float64) Trace {
	next := make([]Entry, len(t.entries), len(t.entries)+1)
	copy(next, t.entries)
	next = append(next, Entry{Mode: m, Likelihood: l})
	return Trace{entries: next}
}

// PushBackDefault appends mode with likelihood 1.
func (t Trace) PushBackDefault(m Mode) Trace { return t.PushBack(m, 1) }

// PushFront prepends mode with likelihood l and returns the extended
// trace for chaining; t itself is left unchanged.
func (t Trace) PushFront(m Mode, l float64) Trace {
	next := make([]Entry, 0, len(t.entries)+1)
	next = append(next, Entry{Mode: m, Likelihood: l})
	next = append(next, t.entries...)
	return Trace{entries: next}
}

// PushFrontDefault prepends mode with likelihood 1.
func (t Trace) PushFrontDefault(m Mode) Trace { return t.PushFront(m, 1) }

// Likelihood returns the product of every entry's likelihood. The
// empty trace has likelihood 1.
func (t Trace) Likelihood() float64 {
	l := 1.0
	for _, e := range t.entries {
		l *= e.Likelihood
	}
	return l
}

// Contains reports whether m appears anywhere in the trace.
func (t Trace) Contains(m Mode) bool {
	return t.ForwardIndex(m) != -1
}

// ForwardIndex returns the index of the first occurrence of m, or -1
// if absent.
func (t Trace) ForwardIndex(m Mode) int {
	for i, e := range t.entries {
		if eq, err := e.Mode.Equal(m); err == nil && eq {
			return i
		}
	}
	return -1
}

// BackwardIndex returns the index of the last occurrence of m, or -1
// if absent.
func (t Trace) BackwardIndex(m Mode) int {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if eq, err := t.entries[i].Mode.Equal(m); err == nil && eq {
			return i
		}
	}
	return -1
}

// HasLooped reports whether any mode appears more than once in the
// trace.
func (t Trace) HasLooped() bool {
	seen := make(map[string]struct{}, len(t.entries))
	for _, e := range t.entries {
		k := e.Mode.Key()
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}

// Equal reports whether two traces have identical (mode, likelihood)
// sequences.
func (t Trace) Equal(other Trace) bool {
	if len(t.entries) != len(other.entries) {
		return false
	}
	for i := range t.entries {
		eq, err := t.entries[i].Mode.Equal(other.entries[i].Mode)
		if err != nil || !eq || t.entries[i].Likelihood != other.entries[i].Likelihood {
			return false
		}
	}
	return true
}

var errReduceBetween = fmt.Errorf("mode: reduce_between requires a present, non-inverted (a,b) pair: %w", cgerr.ErrPrecondition)

// ReduceBetween returns the sub-trace running from the first
// occurrence of a to the last occurrence of b. It fails if a is
// absent, b is absent, or the first a occurs after the last b.
func (t Trace) ReduceBetween(a, b Mode) (Trace, error) {
	fa := t.ForwardIndex(a)
	if fa == -1 {
		return Trace{}, errReduceBetween
	}
	lb := t.BackwardIndex(b)
	if lb == -1 {
		return Trace{}, errReduceBetween
	}
	if fa > lb {
		return Trace{}, errReduceBetween
	}
	cp := make([]Entry, lb-fa+1)
	copy(cp, t.entries[fa:lb+1])
	return Trace{entries: cp}, nil
}

// Merge aligns t1 and t2 on the longest suffix of t1 that equals a
// prefix of t2, falling back to plain concatenation when no overlap
// exists. The prefix contributed solely by t1 is treated as settled
// history and carries likelihood 1; the overlap, when present, carries
// the minimum of the two endpoint-likelihood products spanning it; the
// remainder contributed by t2 keeps its own predictive likelihoods.
// This makes a merge's overall likelihood reflect how confident the
// predicted continuation (t2) is, not the already-observed prefix.
func Merge(t1, t2 Trace) Trace {
	overlap := longestSuffixPrefixOverlap(t1, t2)
	n1 := len(t1.entries)

	prefix := make([]Entry, n1-overlap)
	for i, e := range t1.entries[:n1-overlap] {
		prefix[i] = Entry{Mode: e.Mode, Likelihood: 1}
	}

	var overlapEntries []Entry
	if overlap > 0 {
		t1OverlapLikelihood := 1.0
		for _, e := range t1.entries[n1-overlap:] {
			t1OverlapLikelihood *= e.Likelihood
		}
		t2OverlapLikelihood := 1.0
		for _, e := range t2.entries[:overlap] {
			t2OverlapLikelihood *= e.Likelihood
		}
		minLikelihood := t1OverlapLikelihood
		if t2OverlapLikelihood < minLikelihood {
			minLikelihood = t2OverlapLikelihood
		}
		overlapEntries = make([]Entry, overlap)
		for i, e := range t2.entries[:overlap] {
			overlapEntries[i] = Entry{Mode: e.Mode, Likelihood: 1}
		}
		overlapEntries[0].Likelihood = minLikelihood
	}

	suffix := t2.entries[overlap:]

	merged := make([]Entry, 0, n1+len(t2.entries)-overlap)
	merged = append(merged, prefix...)
	merged = append(merged, overlapEntries...)
	merged = append(merged, suffix...)

	return Trace{entries: merged}
}

// longestSuffixPrefixOverlap returns the length of the longest suffix
// of t1 that equals a prefix of t2 (mode-for-mode, likelihood
// ignored), capped at min(len(t1),len(t2)).
func longestSuffixPrefixOverlap(t1, t2 Trace) int {
	maxLen := len(t1.entries)
	if len(t2.entries) < maxLen {
		maxLen = len(t2.entries)
	}
	for k := maxLen; k > 0; k-- {
		suffix := t1.entries[len(t1.entries)-k:]
		prefix := t2.entries[:k]
		if modesEqual(suffix, prefix) {
			return k
		}
	}
	return 0
}

func modesEqual(a, b []Entry) bool {
	for i := range a {
		eq, err := a[i].Mode.Equal(b[i].Mode)
		if err != nil || !eq {
			return false
		}
	}
	return true
}

// Prediction is one candidate successor mode together with its
// relative frequency among matched recurrences. Modes are not
// comparable (they wrap a map) so predictions are returned as a slice
// rather than a map keyed by Mode.
type Prediction struct {
	Mode        Mode
	Probability float64
}

// Predictions is the result of NextModes: a set of candidate successor
// modes with their probabilities, summing to 1 when non-empty.
type Predictions []Prediction

// Lookup returns the probability predicted for m, and whether m
// appears among the predictions at all.
func (p Predictions) Lookup(m Mode) (float64, bool) {
	for _, pr := range p {
		if eq, err := pr.Mode.Equal(m); err == nil && eq {
			return pr.Probability, true
		}
	}
	return 0, false
}

// NextModes predicts the successor mode distribution by pattern
// matching: for decreasing suffix lengths k, it looks for every
// earlier position in the trace where the same k-length suffix recurs
// and collects the mode that followed each recurrence. The first k
// with at least one match defines the prediction: candidate
// probabilities are the matches' relative frequencies. Returns an
// empty slice if no predecessor match exists at any length.
func (t Trace) NextModes() Predictions {
	n := len(t.entries)
	for k := n - 1; k >= 1; k-- {
		suffix := t.entries[n-k:]
		var candidates []Mode
		for i := 0; i <= n-k-1; i++ {
			window := t.entries[i : i+k]
			if modesEqual(window, suffix) {
				candidates = append(candidates, t.entries[i+k].Mode)
			}
		}
		if len(candidates) > 0 {
			counts := make(map[string]float64, len(candidates))
			byKey := make(map[string]Mode, len(candidates))
			for _, c := range candidates {
				counts[c.Key()]++
				byKey[c.Key()] = c
			}
			result := make(Predictions, 0, len(counts))
			for key, n := range counts {
				result = append(result, Prediction{Mode: byKey[key], Probability: n / float64(len(candidates))})
			}
			return result
		}
	}
	return Predictions{}
}
