// Package config provides the settings and depot manifest loaders for delta.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// ManifestVersion is the depot manifest format understood by DepotLoader.
const ManifestVersion = "1"

// SettingsLoader implements ports.SettingsLoader using delta.yaml.
type SettingsLoader struct{}

// NewSettingsLoader creates a new SettingsLoader.
func NewSettingsLoader() *SettingsLoader {
	return &SettingsLoader{}
}

// Load reads delta.yaml from cwd. A missing file yields the defaults.
// The store path is resolved against cwd.
func (l *SettingsLoader) Load(cwd string) (domain.Settings, error) {
	settings := domain.DefaultSettings()

	path := filepath.Join(cwd, domain.SettingsFileName)
	var file SettingsFile
	err := readAndUnmarshalYAML(path, &file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return domain.Settings{}, zerr.With(err, "path", path)
	default:
		if err := validateSettings(&file); err != nil {
			return domain.Settings{}, zerr.With(err, "path", path)
		}
		if file.Store.Backend != "" {
			settings.StoreBackend = file.Store.Backend
		}
		if file.Store.Path != "" {
			settings.StorePath = file.Store.Path
		}
		settings.LogJSON = file.Log.JSON
		settings.Parallelism = file.Check.Parallelism
		if file.Telemetry.Export != "" {
			settings.TelemetryExport = file.Telemetry.Export
		}
	}

	if !filepath.IsAbs(settings.StorePath) {
		settings.StorePath = filepath.Join(cwd, settings.StorePath)
	}
	return settings, nil
}

// DepotLoader implements ports.DepotLoader using a YAML manifest.
type DepotLoader struct {
	Logger ports.Logger
}

// NewDepotLoader creates a new DepotLoader with the given logger.
func NewDepotLoader(logger ports.Logger) *DepotLoader {
	return &DepotLoader{Logger: logger}
}

// Load reads the manifest at path and builds its depot.
func (l *DepotLoader) Load(path string) (*domain.Depot, error) {
	var manifest Manifest
	if err := readAndUnmarshalYAML(path, &manifest); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	if err := validateManifest(&manifest); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	depot, err := l.buildDepot(&manifest)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return depot, nil
}

func (l *DepotLoader) buildDepot(manifest *Manifest) (*domain.Depot, error) {
	if manifest.Version != "" && manifest.Version != ManifestVersion {
		return nil, zerr.With(
			zerr.Wrap(domain.ErrUnsupportedManifestVersion, "failed to load manifest"),
			"version", manifest.Version,
		)
	}

	changes, latest := l.buildChanges(manifest.Changes)

	horizon := latest
	if manifest.Horizon != nil {
		horizon = domain.Version(*manifest.Horizon)
	}

	sets, err := buildSets(manifest.Sets)
	if err != nil {
		return nil, err
	}

	return domain.NewDepot(horizon, changes, sets)
}

func (l *DepotLoader) buildChanges(dtos []ChangeDTO) ([]domain.Change, domain.Version) {
	changes := make([]domain.Change, 0, len(dtos))
	var latest domain.Version

	for _, dto := range dtos {
		v := domain.Version(dto.Version)
		latest = max(latest, v)

		if len(dto.Analysis) == 0 && len(dto.Source) == 0 {
			l.Logger.Warn(fmt.Sprintf("change at version %d lists no keys", dto.Version))
			continue
		}
		if len(dto.Analysis) > 0 {
			changes = append(changes, domain.Change{
				Version: v,
				Domain:  domain.DomainAnalysis,
				Keys:    domain.NewInternedStrings(dto.Analysis),
			})
		}
		if len(dto.Source) > 0 {
			changes = append(changes, domain.Change{
				Version: v,
				Domain:  domain.DomainSource,
				Keys:    domain.NewInternedStrings(dto.Source),
			})
		}
	}
	return changes, latest
}

func buildSets(dtos map[string]*SetDTO) (map[domain.InternedString]*domain.NestedDependencies, error) {
	names := make([]string, 0, len(dtos))
	for name := range dtos {
		names = append(names, name)
	}
	slices.Sort(names)

	g := domain.NewSetGraph()
	for _, name := range names {
		dto := dtos[name]
		if dto == nil {
			dto = &SetDTO{}
		}

		entries := make([]domain.DependencyEntry, 0, len(dto.Analysis)+len(dto.Source))
		for _, e := range dto.Analysis {
			entries = append(entries, domain.AnalysisEntry(e.Key, domain.Version(e.Since)))
		}
		for _, e := range dto.Source {
			entries = append(entries, domain.SourceEntry(e.Key, domain.Version(e.Since)))
		}

		if err := g.AddSet(&domain.SetDecl{
			Name:     domain.NewInternedString(name),
			Baseline: domain.Version(dto.Baseline),
			Entries:  entries,
			Children: domain.NewInternedStrings(dto.Children),
		}); err != nil {
			return nil, err
		}
	}

	return g.Build()
}

func readAndUnmarshalYAML[T any](path string, target *T) error {
	// #nosec G304 -- path is provided by the user on purpose
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return nil
}
