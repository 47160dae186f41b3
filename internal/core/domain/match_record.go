package domain

import (
	"fmt"

	"go.trai.ch/zerr"
)

// MatchKey identifies a match computation: a dependency set, the change history
// it is matched against, and a candidate version. Results are only reusable
// under an identical key.
type MatchKey struct {
	Fingerprint uint64
	History     uint64
	Version     Version
}

// KeyFor returns the match key of set queried at v against the change history
// identified by history.
func KeyFor(set *NestedDependencies, history uint64, v Version) MatchKey {
	return MatchKey{Fingerprint: set.Fingerprint(), History: history, Version: v}
}

// String returns the key as "<fingerprint>/<history>@<version>".
func (k MatchKey) String() string {
	return fmt.Sprintf("%016x/%016x@%d", k.Fingerprint, k.History, k.Version)
}

// Match kinds used in MatchRecord.
const (
	KindNoMatch                = "none"
	KindAnalysisMatch          = "analysis"
	KindSourceMatch            = "source"
	KindAnalysisAndSourceMatch = "analysis_and_source"
)

// MatchRecord is the persisted form of a MatchResult.
type MatchRecord struct {
	Kind            string  `json:"kind"`
	AnalysisVersion Version `json:"analysis_version,omitzero"`
	SourceVersion   Version `json:"source_version,omitzero"`
}

// RecordOf converts a MatchResult into its persisted form.
func RecordOf(m MatchResult) MatchRecord {
	switch r := m.(type) {
	case AnalysisMatch:
		return MatchRecord{Kind: KindAnalysisMatch, AnalysisVersion: r.Version}
	case SourceMatch:
		return MatchRecord{Kind: KindSourceMatch, SourceVersion: r.SourceVersion}
	case AnalysisAndSourceMatch:
		return MatchRecord{
			Kind:            KindAnalysisAndSourceMatch,
			AnalysisVersion: r.analysisVersion,
			SourceVersion:   r.sourceVersion,
		}
	default:
		return MatchRecord{Kind: KindNoMatch}
	}
}

// Result converts the record back into a MatchResult.
// Records are external input, so an invalid ordering is returned as an error rather than a panic.
func (r MatchRecord) Result() (MatchResult, error) {
	switch r.Kind {
	case KindNoMatch:
		return NoMatch{}, nil
	case KindAnalysisMatch:
		return AnalysisMatch{Version: r.AnalysisVersion}, nil
	case KindSourceMatch:
		return SourceMatch{SourceVersion: r.SourceVersion}, nil
	case KindAnalysisAndSourceMatch:
		m, err := newAnalysisAndSourceMatch(r.AnalysisVersion, r.SourceVersion)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, zerr.With(zerr.Wrap(ErrUnknownMatchKind, "failed to decode match record"), "kind", r.Kind)
	}
}
