package domain

import "go.trai.ch/zerr"

var (
	// ErrStructuralIntegrity is returned when a dependency set is malformed.
	ErrStructuralIntegrity = zerr.New("dependency set is malformed")

	// ErrDanglingReference is returned when a dependency set references a child that does not exist.
	ErrDanglingReference = zerr.New("dangling dependency set reference")

	// ErrInvalidMatchOrdering is returned when a combined match would carry a source version
	// that is not strictly below its analysis version.
	ErrInvalidMatchOrdering = zerr.New("source version must be less than analysis version")

	// ErrVersionBeforeBaseline is returned when a set is queried at a version older than its baseline.
	ErrVersionBeforeBaseline = zerr.New("candidate version is older than the set baseline")

	// ErrBeyondHorizon is returned when a version is queried that the delta source cannot answer yet.
	ErrBeyondHorizon = zerr.New("candidate version is beyond the delta source horizon")

	// ErrDeltaSourceFailed is returned when the delta source cannot answer for a key.
	ErrDeltaSourceFailed = zerr.New("delta source query failed")

	// ErrAlreadyCompleted is returned when a memoization cell is completed twice.
	ErrAlreadyCompleted = zerr.New("cell already completed")

	// ErrNonMonotonicVersion is returned when a change is recorded at a version that is not newer
	// than the current horizon.
	ErrNonMonotonicVersion = zerr.New("version must increase monotonically")

	// ErrMissingDependency is returned when a set references a child set that is not declared.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected between declared dependency sets.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrSetAlreadyExists is returned when two dependency sets share a name.
	ErrSetAlreadyExists = zerr.New("dependency set already exists")

	// ErrSetNotFound is returned when a requested dependency set is not declared.
	ErrSetNotFound = zerr.New("dependency set not found")

	// ErrUnknownDomain is returned when a domain name cannot be parsed.
	ErrUnknownDomain = zerr.New("unknown dependency domain")

	// ErrUnknownMatchKind is returned when a stored match record has an unrecognized kind.
	ErrUnknownMatchKind = zerr.New("unknown match kind")

	// ErrStoreReadFailed is returned when reading from the match store fails.
	ErrStoreReadFailed = zerr.New("failed to read match store")

	// ErrStoreWriteFailed is returned when writing to the match store fails.
	ErrStoreWriteFailed = zerr.New("failed to write match store")

	// ErrStoreUnmarshalFailed is returned when a stored match record cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal match record")

	// ErrStoreMarshalFailed is returned when a match record cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal match record")

	// ErrUnknownStoreBackend is returned when the configured store backend is not supported.
	ErrUnknownStoreBackend = zerr.New("unknown store backend")

	// ErrInvalidVersion is returned when a version argument cannot be parsed.
	ErrInvalidVersion = zerr.New("invalid version")

	// ErrConfigReadFailed is returned when a configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when a configuration file is not valid YAML for its schema.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrUnsupportedManifestVersion is returned when a depot manifest declares an unknown format version.
	ErrUnsupportedManifestVersion = zerr.New("unsupported manifest version")

	// ErrCheckFailed is returned when at least one set of a check could not be matched.
	ErrCheckFailed = zerr.New("one or more sets failed to match")
)
