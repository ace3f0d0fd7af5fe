// Package mode implements discrete robot modes and the ordered
// mode-trace structure used to record, merge, and predict a robot's
// trajectory through mode space.
package mode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/elektrokombinacija/cobot-guard/internal/cgerr"
)

// Mode is a discrete labelled robot state: a unique-keyed mapping from
// key to value. The zero value is the empty mode.
type Mode struct {
	entries map[string]string
}

// New builds a Mode from the given key/value pairs.
func New(kv map[string]string) Mode {
	cp := make(map[string]string, len(kv))
	for k, v := range kv {
		cp[k] = v
	}
	return Mode{entries: cp}
}

// IsEmpty reports whether the mode has no entries.
func (m Mode) IsEmpty() bool { return len(m.entries) == 0 }

// Values returns a copy of the mode's key/value pairs.
func (m Mode) Values() map[string]string {
	cp := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		cp[k] = v
	}
	return cp
}

// canonical returns the sorted "key=value" pairs joined with ';', used
// both as an equality/ordering key and as a map key for mode-indexed
// structures.
func (m Mode) canonical() string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m.entries[k])
	}
	return strings.Join(parts, ";")
}

// Key returns the canonical string identity of the mode, suitable for
// use as a map key.
func (m Mode) Key() string { return m.canonical() }

// sameKeySet reports whether m and other share exactly the same set of
// keys.
func (m Mode) sameKeySet(other Mode) bool {
	if len(m.entries) != len(other.entries) {
		return false
	}
	for k := range m.entries {
		if _, ok := other.entries[k]; !ok {
			return false
		}
	}
	return true
}

// Less reports whether m sorts before other under the canonical
// lexicographic ordering over sorted (key,value) pairs. Unlike Equal,
// Less is defined even across differing key sets, since it is used
// purely to give modes a total order as map/sequence keys.
func (m Mode) Less(other Mode) bool {
	return m.canonical() < other.canonical()
}

// Equal reports whether m and other are equal: their key sets must be
// identical and every value must match. It returns a wrapped
// cgerr.ErrPrecondition, not false, when the key sets differ — this is
// the mode-comparison-across-differing-key-sets precondition violation.
func (m Mode) Equal(other Mode) (bool, error) {
	if !m.sameKeySet(other) {
		return false, fmt.Errorf("mode: cannot compare modes with differing key sets: %w", cgerr.ErrPrecondition)
	}
	return m.canonical() == other.canonical(), nil
}
