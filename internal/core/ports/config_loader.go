package ports

import "go.trai.ch/delta/internal/core/domain"

// DepotLoader loads a depot manifest.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type DepotLoader interface {
	// Load reads the manifest at path and returns the depot it describes.
	Load(path string) (*domain.Depot, error)
}

// SettingsLoader loads tool settings.
type SettingsLoader interface {
	// Load reads settings from the given working directory.
	// Defaults are returned when no settings file exists.
	Load(cwd string) (domain.Settings, error)
}
