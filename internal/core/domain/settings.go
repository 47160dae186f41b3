package domain

// Telemetry exporters understood by the telemetry adapter.
const (
	TelemetryExportNone   = "none"
	TelemetryExportStdout = "stdout"
)

// Store backends understood by the match store adapter.
const (
	StoreBackendJSON   = "json"
	StoreBackendBadger = "badger"
	StoreBackendMemory = "memory"
)

const (
	// SettingsFileName is the settings file discovered in the working directory.
	SettingsFileName = "delta.yaml"
	// DefaultStorePath is where match results are persisted, relative to the working directory.
	DefaultStorePath = ".delta/results"
	// DirPerm is the permission used for directories created by the store.
	DirPerm = 0o750
	// FilePerm is the permission used for files created by the store.
	FilePerm = 0o644
)

// Settings configures the delta tool.
type Settings struct {
	StoreBackend string
	StorePath    string
	LogJSON      bool
	// Parallelism bounds how many sets are checked at once. Zero means one per CPU.
	Parallelism int
	// TelemetryExport selects where spans and metrics are exported on shutdown.
	TelemetryExport string
}

// DefaultSettings returns the settings used when no settings file exists.
func DefaultSettings() Settings {
	return Settings{
		StoreBackend:    StoreBackendJSON,
		StorePath:       DefaultStorePath,
		TelemetryExport: TelemetryExportNone,
	}
}
