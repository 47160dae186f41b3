package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/internal/adapters/config"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/delta/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

var (
	_ ports.DepotLoader    = (*config.DepotLoader)(nil)
	_ ports.SettingsLoader = (*config.SettingsLoader)(nil)
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	//nolint:gosec // test fixture
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSettingsLoader_Defaults(t *testing.T) {
	cwd := t.TempDir()

	settings, err := config.NewSettingsLoader().Load(cwd)
	require.NoError(t, err)
	assert.Equal(t, domain.Settings{
		StoreBackend:    domain.StoreBackendJSON,
		StorePath:       filepath.Join(cwd, domain.DefaultStorePath),
		TelemetryExport: domain.TelemetryExportNone,
	}, settings)
}

func TestSettingsLoader_File(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, cwd, domain.SettingsFileName, `
store:
  backend: badger
  path: cache/matches
log:
  json: true
check:
  parallelism: 3
telemetry:
  export: stdout
`)

	settings, err := config.NewSettingsLoader().Load(cwd)
	require.NoError(t, err)
	assert.Equal(t, domain.Settings{
		StoreBackend:    domain.StoreBackendBadger,
		StorePath:       filepath.Join(cwd, "cache", "matches"),
		LogJSON:         true,
		Parallelism:     3,
		TelemetryExport: domain.TelemetryExportStdout,
	}, settings)
}

func TestSettingsLoader_AbsoluteStorePath(t *testing.T) {
	cwd := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")
	writeFile(t, cwd, domain.SettingsFileName, "store:\n  path: "+abs+"\n")

	settings, err := config.NewSettingsLoader().Load(cwd)
	require.NoError(t, err)
	assert.Equal(t, abs, settings.StorePath)
	assert.Equal(t, domain.StoreBackendJSON, settings.StoreBackend)
}

func TestSettingsLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown backend",
			content: "store:\n  backend: etcd\n",
			wantErr: domain.ErrUnknownStoreBackend,
		},
		{
			name:    "negative parallelism",
			content: "check:\n  parallelism: -1\n",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "unknown telemetry exporter",
			content: "telemetry:\n  export: jaeger\n",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "invalid yaml",
			content: "store: [unterminated\n",
			wantMsg: domain.ErrConfigParseFailed.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cwd := t.TempDir()
			writeFile(t, cwd, domain.SettingsFileName, tt.content)

			_, err := config.NewSettingsLoader().Load(cwd)
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.ErrorContains(t, err, tt.wantMsg)
			}
		})
	}
}

const depotManifest = `
version: "1"
horizon: 12
changes:
  - version: 3
    source: [src/main.go]
  - version: 5
    analysis: ["//pkg:lib"]
    source: [src/lib.go]
sets:
  base:
    baseline: 0
    source:
      - {key: src/main.go, since: 1}
  lib:
    baseline: 2
    analysis:
      - {key: "//pkg:lib", since: 2}
    children: [base]
  app:
    baseline: 4
    children: [lib, base]
`

func TestDepotLoader_Load(t *testing.T) {
	ctrl := gomock.NewController(t)
	path := writeFile(t, t.TempDir(), "depot.yaml", depotManifest)

	depot, err := config.NewDepotLoader(mocks.NewMockLogger(ctrl)).Load(path)
	require.NoError(t, err)

	assert.Equal(t, domain.Version(12), depot.Horizon)
	assert.Equal(t, []domain.Change{
		{Version: 3, Domain: domain.DomainSource, Keys: domain.NewInternedStrings([]string{"src/main.go"})},
		{Version: 5, Domain: domain.DomainAnalysis, Keys: domain.NewInternedStrings([]string{"//pkg:lib"})},
		{Version: 5, Domain: domain.DomainSource, Keys: domain.NewInternedStrings([]string{"src/lib.go"})},
	}, depot.Changes)
	assert.Equal(t, []string{"app", "base", "lib"}, depot.SetNames())

	base, err := depot.Set("base")
	require.NoError(t, err)
	lib, err := depot.Set("lib")
	require.NoError(t, err)
	app, err := depot.Set("app")
	require.NoError(t, err)

	assert.Equal(t, domain.Version(4), app.Baseline())
	assert.Equal(t, domain.ChangeAt(1), app.Floor(domain.DomainSource))
	assert.Equal(t, domain.ChangeAt(2), app.Floor(domain.DomainAnalysis))
	assert.False(t, base.Floor(domain.DomainAnalysis).Found)

	children := make([]*domain.NestedDependencies, 0, 2)
	for child := range app.Children() {
		children = append(children, child)
	}
	require.Len(t, children, 2)
	assert.Same(t, lib, children[0])
	assert.Same(t, base, children[1])
}

func TestDepotLoader_DefaultHorizon(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn("change at version 9 lists no keys")

	path := writeFile(t, t.TempDir(), "depot.yaml", `
changes:
  - version: 2
    source: [a]
  - version: 9
sets:
  only: {baseline: 0}
`)

	depot, err := config.NewDepotLoader(log).Load(path)
	require.NoError(t, err)
	assert.Equal(t, domain.Version(9), depot.Horizon)
	assert.Len(t, depot.Changes, 1)
}

func TestDepotLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "unsupported version",
			content: "version: \"2\"\n",
			wantErr: domain.ErrUnsupportedManifestVersion,
		},
		{
			name:    "missing child",
			content: "sets:\n  a: {children: [ghost]}\n",
			wantErr: domain.ErrMissingDependency,
		},
		{
			name:    "cycle",
			content: "sets:\n  a: {children: [b]}\n  b: {children: [a]}\n",
			wantErr: domain.ErrCycleDetected,
		},
		{
			name:    "child newer than parent",
			content: "sets:\n  child: {baseline: 5}\n  parent: {baseline: 1, children: [child]}\n",
			wantErr: domain.ErrStructuralIntegrity,
		},
		{
			name:    "out of order changes",
			content: "changes:\n  - {version: 4, source: [a]}\n  - {version: 2, source: [a]}\n",
			wantErr: domain.ErrNonMonotonicVersion,
		},
		{
			name:    "change beyond horizon",
			content: "horizon: 3\nchanges:\n  - {version: 4, source: [a]}\n",
			wantErr: domain.ErrBeyondHorizon,
		},
		{
			name:    "entry without key",
			content: "sets:\n  a:\n    source: [{since: 1}]\n",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "empty child name",
			content: "sets:\n  a: {children: [\"\"]}\n",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "empty change key",
			content: "changes:\n  - {version: 1, analysis: [\"\"]}\n",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "change at genesis",
			content: "changes:\n  - {version: 0, source: [a]}\n",
			wantErr: domain.ErrInvalidVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			path := writeFile(t, t.TempDir(), "depot.yaml", tt.content)

			_, err := config.NewDepotLoader(mocks.NewMockLogger(ctrl)).Load(path)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDepotLoader_ReadErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := config.NewDepotLoader(mocks.NewMockLogger(ctrl))

	_, err := loader.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, domain.ErrConfigReadFailed.Error())

	path := writeFile(t, t.TempDir(), "depot.yaml", "sets: [not, a, map]\n")
	_, err = loader.Load(path)
	assert.ErrorContains(t, err, domain.ErrConfigParseFailed.Error())
}
