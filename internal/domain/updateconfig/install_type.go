package updateconfig

import (
	"errors"
	"fmt"
	"strings"
)

// InstallType selects how the client installs an A/B package.
type InstallType string

const (
	// InstallTypeStreaming applies the payload while it is being downloaded.
	InstallTypeStreaming InstallType = "STREAMING"
	// InstallTypeNonStreaming downloads the whole package before applying it.
	InstallTypeNonStreaming InstallType = "NON_STREAMING"
)

var errUnknownInstallType = errors.New("unknown ab install type")

// InstallTypes lists the accepted values in CLI order.
func InstallTypes() []InstallType {
	return []InstallType{InstallTypeStreaming, InstallTypeNonStreaming}
}

// ParseInstallType accepts exactly one of the InstallTypes literals.
func ParseInstallType(s string) (InstallType, error) {
	for _, t := range InstallTypes() {
		if string(t) == s {
			return t, nil
		}
	}

	choices := make([]string, 0, len(InstallTypes()))
	for _, t := range InstallTypes() {
		choices = append(choices, string(t))
	}

	return "", fmt.Errorf("%w %q, choose from %s", errUnknownInstallType, s, strings.Join(choices, ", "))
}

// String implements fmt.Stringer and pflag.Value.
func (t InstallType) String() string {
	return string(t)
}

// Set implements pflag.Value.
func (t *InstallType) Set(s string) error {
	parsed, err := ParseInstallType(s)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// Type implements pflag.Value.
func (*InstallType) Type() string {
	return "string"
}

// Valid reports whether t is one of the two known literals.
func (t InstallType) Valid() bool {
	_, err := ParseInstallType(string(t))
	return err == nil
}

// IncludeNonStreaming reports whether the broader, non-streaming entry set
// should be requested from a property-files provider.
func (t InstallType) IncludeNonStreaming() bool {
	return t != InstallTypeStreaming
}

// MarshalText refuses to encode anything but the two known literals.
func (t InstallType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w %q", errUnknownInstallType, string(t))
	}

	return []byte(t), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *InstallType) UnmarshalText(text []byte) error {
	return t.Set(string(text))
}
