package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Change records that keys in one domain changed at Version.
type Change struct {
	Version Version
	Domain  DependencyDomain
	Keys    []InternedString
}

// Depot is a loaded depot manifest: recorded changes and named dependency sets.
type Depot struct {
	// Horizon is the newest version the change history covers.
	Horizon Version
	// Changes are ordered by non-decreasing version.
	Changes []Change

	sets map[InternedString]*NestedDependencies
}

// NewDepot creates a Depot. Changes must be ordered by non-decreasing version,
// start after the genesis version 0 and may not extend past horizon.
func NewDepot(horizon Version, changes []Change, sets map[InternedString]*NestedDependencies) (*Depot, error) {
	for i, c := range changes {
		if c.Version == 0 {
			return nil, zerr.With(
				zerr.Wrap(ErrInvalidVersion, "changes cannot happen at the genesis version"),
				"version", c.Version.String(),
			)
		}
		if i > 0 && c.Version < changes[i-1].Version {
			return nil, zerr.With(
				zerr.Wrap(ErrNonMonotonicVersion, "changes are out of order"),
				"version", c.Version.String(),
			)
		}
		if c.Version > horizon {
			return nil, zerr.With(
				zerr.With(zerr.Wrap(ErrBeyondHorizon, "change is newer than the horizon"),
					"version", c.Version.String()),
				"horizon", horizon.String(),
			)
		}
	}
	return &Depot{
		Horizon: horizon,
		Changes: changes,
		sets:    sets,
	}, nil
}

// Set returns the named dependency set.
func (d *Depot) Set(name string) (*NestedDependencies, error) {
	set, ok := d.sets[NewInternedString(name)]
	if !ok {
		return nil, zerr.With(zerr.Wrap(ErrSetNotFound, "failed to look up set"), "set", name)
	}
	return set, nil
}

// SetNames returns every set name in lexical order.
func (d *Depot) SetNames() []string {
	names := make([]string, 0, len(d.sets))
	for name := range d.sets {
		names = append(names, name.String())
	}
	slices.Sort(names)
	return names
}
