// Package domain contains the core models for dependency-set validation: versions,
// dependency entries, nested dependency sets and match results.
package domain

import (
	"strconv"

	"go.trai.ch/zerr"
)

// Version identifies a state of the depot. Versions only ever increase.
type Version uint64

// String returns the decimal form of v.
func (v Version) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// ParseVersion parses a decimal version string.
func ParseVersion(s string) (Version, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(ErrInvalidVersion, "failed to parse version"), "version", s)
	}
	return Version(n), nil
}

// EarliestChange is the earliest version at which a domain was found to change.
// The zero value means no change was found.
type EarliestChange struct {
	Version Version
	Found   bool
}

// ChangeAt returns an EarliestChange found at v.
func ChangeAt(v Version) EarliestChange {
	return EarliestChange{Version: v, Found: true}
}

// Lower reports whether v would lower the running minimum held by c.
func (c EarliestChange) Lower(v Version) bool {
	return !c.Found || v < c.Version
}
