package propertyfiles

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider returns the property-files string for an open package.
type Provider interface {
	PropertyFilesString(ctx context.Context, pkg *zip.Reader, includeNonStreaming bool) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, pkg *zip.Reader, includeNonStreaming bool) (string, error)

// PropertyFilesString calls f.
func (f ProviderFunc) PropertyFilesString(ctx context.Context, pkg *zip.Reader, includeNonStreaming bool) (string, error) {
	return f(ctx, pkg, includeNonStreaming)
}

// Source names a Provider implementation.
type Source string

const (
	// SourceComputed computes offsets from the package zip structure.
	SourceComputed Source = "computed"
	// SourceMetadata reads the string recorded in the package metadata.
	SourceMetadata Source = "metadata"
)

var errUnknownSource = errors.New("unknown property files source")

// Sources lists the accepted values.
func Sources() []Source {
	return []Source{SourceComputed, SourceMetadata}
}

// ParseSource accepts one of the Sources literals.
func ParseSource(s string) (Source, error) {
	for _, source := range Sources() {
		if string(source) == s {
			return source, nil
		}
	}

	return "", fmt.Errorf("%w %q, choose from %s, %s", errUnknownSource, s, SourceComputed, SourceMetadata)
}

// String implements pflag.Value.
func (s Source) String() string {
	return string(s)
}

// Set implements pflag.Value.
func (s *Source) Set(value string) error {
	parsed, err := ParseSource(value)
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// Type implements pflag.Value.
func (*Source) Type() string {
	return "string"
}

// New returns the provider for source.
//
//nolint:ireturn // Callers only need the interface.
func New(source Source) (Provider, error) {
	switch source {
	case SourceComputed:
		return NewComputed(), nil
	case SourceMetadata:
		return NewRecorded(), nil
	default:
		return nil, fmt.Errorf("%w %q", errUnknownSource, source)
	}
}

// indexEntries maps member names to files. Later duplicates win, as in zip readers
// that consult the central directory by name.
func indexEntries(pkg *zip.Reader) map[string]*zip.File {
	entries := make(map[string]*zip.File, len(pkg.File))
	for _, f := range pkg.File {
		entries[f.Name] = f
	}

	return entries
}

// baseName returns the part of a member name after the last '/'.
func baseName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}

	return name
}
