package updateconfig

import "errors"

// Error categories. Callers wrap causes with them so errors.Is works on both.
var (
	// ErrArchive means the package cannot be opened or read as a zip archive.
	ErrArchive = errors.New("archive error")
	// ErrPropertyFiles means the property-files string could not be computed.
	ErrPropertyFiles = errors.New("property files error")
	// ErrFormat means a property-files string violates the triple grammar.
	ErrFormat = errors.New("property files format error")
	// ErrIO means the output could not be written.
	ErrIO = errors.New("io error")
	// ErrUsage means the command line was rejected before any work started.
	ErrUsage = errors.New("usage error")
	// ErrSchema means a config document does not match the update config schema.
	ErrSchema = errors.New("schema error")
	// ErrMismatch means a property file range does not match the package contents.
	ErrMismatch = errors.New("property file mismatch")
)
