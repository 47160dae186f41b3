package config

// SettingsFile represents the structure of the delta.yaml settings file.
type SettingsFile struct {
	Store     StoreDTO     `yaml:"store"`
	Log       LogDTO       `yaml:"log"`
	Check     CheckDTO     `yaml:"check"`
	Telemetry TelemetryDTO `yaml:"telemetry"`
}

// StoreDTO configures the match store.
type StoreDTO struct {
	Backend string `yaml:"backend" validate:"omitempty,oneof=json badger memory"`
	Path    string `yaml:"path"`
}

// LogDTO configures logging.
type LogDTO struct {
	JSON bool `yaml:"json"`
}

// CheckDTO configures the check command.
type CheckDTO struct {
	Parallelism int `yaml:"parallelism" validate:"gte=0"`
}

// TelemetryDTO configures span and metric export.
type TelemetryDTO struct {
	Export string `yaml:"export" validate:"omitempty,oneof=none stdout"`
}

// Manifest represents the structure of a depot manifest.
type Manifest struct {
	Version string             `yaml:"version"`
	Horizon *uint64            `yaml:"horizon"`
	Changes []ChangeDTO        `yaml:"changes" validate:"dive"`
	Sets    map[string]*SetDTO `yaml:"sets" validate:"dive"`
}

// ChangeDTO lists the keys that changed at one version.
type ChangeDTO struct {
	Version  uint64   `yaml:"version"`
	Analysis []string `yaml:"analysis" validate:"dive,required"`
	Source   []string `yaml:"source" validate:"dive,required"`
}

// SetDTO declares a named dependency set.
type SetDTO struct {
	Baseline uint64     `yaml:"baseline"`
	Analysis []EntryDTO `yaml:"analysis" validate:"dive"`
	Source   []EntryDTO `yaml:"source" validate:"dive"`
	Children []string   `yaml:"children" validate:"dive,required"`
}

// EntryDTO is a single dependency with the version it is known unchanged below.
type EntryDTO struct {
	Key   string `yaml:"key" validate:"required"`
	Since uint64 `yaml:"since"`
}
