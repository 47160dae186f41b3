package domain

import (
	"fmt"

	"go.trai.ch/zerr"
)

// MatchResult classifies how a dependency set changed up to a candidate version.
// The set of variants is closed: NoMatch, AnalysisMatch, SourceMatch and
// AnalysisAndSourceMatch.
type MatchResult interface {
	// Invalidates reports whether the cached result must be recomputed.
	Invalidates() bool
	String() string

	matchResult()
}

// NoMatch means no reachable entry changed at or below the queried version.
type NoMatch struct{}

// AnalysisMatch carries the earliest analysis-domain change. No source change was
// found below it.
type AnalysisMatch struct {
	Version Version
}

// SourceMatch carries the earliest source-domain change. No analysis change was found.
type SourceMatch struct {
	SourceVersion Version
}

// AnalysisAndSourceMatch carries both domains' earliest changes, with the source
// change strictly earlier. Build it with NewAnalysisAndSourceMatch.
type AnalysisAndSourceMatch struct {
	analysisVersion Version
	sourceVersion   Version
}

// NewAnalysisAndSourceMatch returns a combined match.
// It panics with ErrInvalidMatchOrdering unless sourceVersion < analysisVersion.
func NewAnalysisAndSourceMatch(analysisVersion, sourceVersion Version) AnalysisAndSourceMatch {
	m, err := newAnalysisAndSourceMatch(analysisVersion, sourceVersion)
	if err != nil {
		panic(err)
	}
	return m
}

func newAnalysisAndSourceMatch(analysisVersion, sourceVersion Version) (AnalysisAndSourceMatch, error) {
	if sourceVersion >= analysisVersion {
		return AnalysisAndSourceMatch{}, zerr.With(
			zerr.With(zerr.Wrap(ErrInvalidMatchOrdering, "invalid combined match"),
				"source_version", sourceVersion.String()),
			"analysis_version", analysisVersion.String(),
		)
	}
	return AnalysisAndSourceMatch{
		analysisVersion: analysisVersion,
		sourceVersion:   sourceVersion,
	}, nil
}

// AnalysisVersion returns the earliest analysis-domain change.
func (m AnalysisAndSourceMatch) AnalysisVersion() Version { return m.analysisVersion }

// SourceVersion returns the earliest source-domain change.
func (m AnalysisAndSourceMatch) SourceVersion() Version { return m.sourceVersion }

func (NoMatch) matchResult()                {}
func (AnalysisMatch) matchResult()          {}
func (SourceMatch) matchResult()            {}
func (AnalysisAndSourceMatch) matchResult() {}

// Invalidates implements MatchResult.
func (NoMatch) Invalidates() bool { return false }

// Invalidates implements MatchResult.
func (AnalysisMatch) Invalidates() bool { return true }

// Invalidates implements MatchResult.
func (SourceMatch) Invalidates() bool { return true }

// Invalidates implements MatchResult.
func (AnalysisAndSourceMatch) Invalidates() bool { return true }

func (NoMatch) String() string { return "NoMatch" }

func (m AnalysisMatch) String() string {
	return fmt.Sprintf("AnalysisMatch(%d)", m.Version)
}

func (m SourceMatch) String() string {
	return fmt.Sprintf("SourceMatch(%d)", m.SourceVersion)
}

func (m AnalysisAndSourceMatch) String() string {
	return fmt.Sprintf("AnalysisAndSourceMatch(%d, %d)", m.analysisVersion, m.sourceVersion)
}

// CombineMatches merges the earliest change found in each domain.
// When both domains changed, analysis dominates unless the source change is strictly earlier.
func CombineMatches(analysis, source EarliestChange) MatchResult {
	switch {
	case analysis.Found && source.Found:
		if analysis.Version <= source.Version {
			return AnalysisMatch{Version: analysis.Version}
		}
		return NewAnalysisAndSourceMatch(analysis.Version, source.Version)
	case analysis.Found:
		return AnalysisMatch{Version: analysis.Version}
	case source.Found:
		return SourceMatch{SourceVersion: source.Version}
	default:
		return NoMatch{}
	}
}
