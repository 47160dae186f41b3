package domain

import (
	"encoding/binary"
	"iter"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

const maxPathCount = 1 << 48

// NestedDependencies is the transitive dependency footprint of a memoized node.
// It holds direct entries plus shared child sets and is immutable once built.
// Children are passed in already constructed, so the sets always form a DAG.
type NestedDependencies struct {
	baseline    Version
	entries     []DependencyEntry
	children    []*NestedDependencies
	floors      [domainCount]EarliestChange
	fingerprint uint64
	size        int
}

// NewNestedDependencies builds a set computed at baseline from its direct entries and children.
// A nil child is a dangling reference. A child computed after its parent is malformed.
func NewNestedDependencies(
	baseline Version,
	entries []DependencyEntry,
	children ...*NestedDependencies,
) (*NestedDependencies, error) {
	n := &NestedDependencies{
		baseline: baseline,
		entries:  slices.Clone(entries),
		children: slices.Clone(children),
		size:     1,
	}

	for _, e := range n.entries {
		if e.Domain >= domainCount {
			return nil, zerr.With(
				zerr.Wrap(ErrStructuralIntegrity, "entry has an unknown domain"),
				"key", e.Key.String(),
			)
		}
		n.lowerFloor(e.Domain, e.MinVersion)
	}

	for i, c := range n.children {
		if c == nil {
			return nil, zerr.With(zerr.Wrap(ErrDanglingReference, "child set is nil"), "child_index", i)
		}
		if c.baseline > baseline {
			return nil, zerr.With(
				zerr.With(zerr.Wrap(ErrStructuralIntegrity, "child set is newer than its parent"),
					"baseline", baseline.String()),
				"child_baseline", c.baseline.String(),
			)
		}
		for _, d := range Domains {
			if f := c.floors[d]; f.Found {
				n.lowerFloor(d, f.Version)
			}
		}
		n.size = min(n.size+c.size, maxPathCount)
	}

	n.fingerprint = n.computeFingerprint()
	return n, nil
}

// MustNestedDependencies is like NewNestedDependencies but panics on error.
// It is intended for static fixtures.
func MustNestedDependencies(
	baseline Version,
	entries []DependencyEntry,
	children ...*NestedDependencies,
) *NestedDependencies {
	n, err := NewNestedDependencies(baseline, entries, children...)
	if err != nil {
		panic(err)
	}
	return n
}

func (n *NestedDependencies) lowerFloor(d DependencyDomain, v Version) {
	if n.floors[d].Lower(v) {
		n.floors[d] = ChangeAt(v)
	}
}

func (n *NestedDependencies) computeFingerprint() uint64 {
	h := xxhash.New()
	buf := make([]byte, 0, 64)

	buf = binary.LittleEndian.AppendUint64(buf, uint64(n.baseline))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(n.entries)))
	_, _ = h.Write(buf)

	for _, e := range n.entries {
		buf = buf[:0]
		buf = append(buf, byte(e.Domain))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(e.MinVersion))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(e.Key.String())))
		_, _ = h.Write(buf)
		_, _ = h.WriteString(e.Key.String())
	}

	for _, c := range n.children {
		buf = binary.LittleEndian.AppendUint64(buf[:0], c.fingerprint)
		_, _ = h.Write(buf)
	}

	return h.Sum64()
}

// Baseline returns the version at which the memoized result was computed.
func (n *NestedDependencies) Baseline() Version {
	return n.baseline
}

// Floor returns the lowest MinVersion of any reachable entry in domain d.
// Found is false when the domain has no reachable entry.
func (n *NestedDependencies) Floor(d DependencyDomain) EarliestChange {
	if d >= domainCount {
		return EarliestChange{}
	}
	return n.floors[d]
}

// Fingerprint returns a structural hash of the set and all of its children.
// Equal fingerprints identify sets with the same baseline, entries and children.
func (n *NestedDependencies) Fingerprint() uint64 {
	return n.fingerprint
}

// Entries yields the direct entries in declaration order.
func (n *NestedDependencies) Entries() iter.Seq[DependencyEntry] {
	return func(yield func(DependencyEntry) bool) {
		for _, e := range n.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Children yields the direct child sets in declaration order.
func (n *NestedDependencies) Children() iter.Seq[*NestedDependencies] {
	return func(yield func(*NestedDependencies) bool) {
		for _, c := range n.children {
			if !yield(c) {
				return
			}
		}
	}
}

// PathCount returns the number of sets reachable by counting every path separately.
// Shared children are counted once per parent, so this grows with the number of
// paths rather than the number of distinct sets. The count saturates at 2^48.
func (n *NestedDependencies) PathCount() int {
	return n.size
}
