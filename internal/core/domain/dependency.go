package domain

import (
	"go.trai.ch/zerr"
)

// DependencyDomain tags a dependency entry with the kind of state it depends on.
type DependencyDomain uint8

const (
	// DomainAnalysis covers derived state, such as results of other memoized nodes.
	DomainAnalysis DependencyDomain = iota
	// DomainSource covers raw inputs, such as file contents.
	DomainSource

	domainCount = 2
)

// Domains lists every dependency domain in evaluation order.
var Domains = [domainCount]DependencyDomain{DomainAnalysis, DomainSource}

// String returns the lower-case domain name.
func (d DependencyDomain) String() string {
	switch d {
	case DomainAnalysis:
		return "analysis"
	case DomainSource:
		return "source"
	default:
		return "unknown"
	}
}

// ParseDependencyDomain parses a domain name as produced by String.
func ParseDependencyDomain(s string) (DependencyDomain, error) {
	switch s {
	case "analysis":
		return DomainAnalysis, nil
	case "source":
		return DomainSource, nil
	default:
		return 0, zerr.With(zerr.Wrap(ErrUnknownDomain, "failed to parse domain"), "domain", s)
	}
}

// DependencyEntry is a single dependency of a memoized node.
// The entry is known not to have changed below MinVersion, so only changes at or
// after MinVersion can invalidate it.
type DependencyEntry struct {
	Domain     DependencyDomain
	Key        InternedString
	MinVersion Version
}

// NewDependencyEntry creates an entry for key in domain d with the given floor.
func NewDependencyEntry(d DependencyDomain, key string, minVersion Version) DependencyEntry {
	return DependencyEntry{
		Domain:     d,
		Key:        NewInternedString(key),
		MinVersion: minVersion,
	}
}

// AnalysisEntry is shorthand for an analysis-domain entry.
func AnalysisEntry(key string, minVersion Version) DependencyEntry {
	return NewDependencyEntry(DomainAnalysis, key, minVersion)
}

// SourceEntry is shorthand for a source-domain entry.
func SourceEntry(key string, minVersion Version) DependencyEntry {
	return NewDependencyEntry(DomainSource, key, minVersion)
}
