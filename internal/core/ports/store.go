package ports

import "go.trai.ch/delta/internal/core/domain"

// MatchStore persists completed match results.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type MatchStore interface {
	// Get retrieves the result stored for key.
	// Returns nil, false, nil if not found.
	Get(key domain.MatchKey) (domain.MatchResult, bool, error)

	// Put stores the result for key.
	Put(key domain.MatchKey, result domain.MatchResult) error
}
