// Package ports defines the interfaces the validator core depends on.
package ports

import (
	"context"

	"go.trai.ch/delta/internal/core/domain"
)

// DeltaSource answers which version a dependency key changed at.
//
//go:generate mockgen -source=delta_source.go -destination=mocks/mock_delta_source.go -package=mocks
type DeltaSource interface {
	// ChangedAt returns the earliest version at or after since at which key changed in domain d.
	// The boolean is false when no change is known up to the horizon.
	ChangedAt(ctx context.Context, d domain.DependencyDomain, key domain.InternedString, since domain.Version) (domain.Version, bool, error)

	// Horizon returns the newest version the source can answer for.
	Horizon() domain.Version

	// History identifies the change history answers come from. Sources with equal
	// History give equal answers, so results computed against one are valid for the other.
	History() uint64
}

// ChangeRecorder feeds the changes of a loaded depot into the delta source.
type ChangeRecorder interface {
	// Load records every change of depot and advances the horizon to depot.Horizon.
	Load(depot *domain.Depot) error
}
