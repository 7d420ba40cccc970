package updateconfig

import (
	"errors"
	"fmt"
	"path/filepath"
)

// truncatedSuffixLength is the number of trailing characters cut from the
// package file name, the length of ".zip".
const truncatedSuffixLength = 4

var (
	errEmptyFilename = errors.New("empty filename")
	errNotDecimal    = errors.New("not a non-negative decimal integer")
)

// PropertyFile is one named byte range inside the package.
type PropertyFile struct {
	// Filename is the entry name as emitted by the property-files provider.
	Filename string `json:"filename"`
	// Offset is the byte offset of the entry data from the start of the package.
	Offset int64 `json:"offset"`
	// Size is the byte length of the entry data.
	Size int64 `json:"size"`
}

// End returns the offset just past the range. It may overflow; use Within for bounds checks.
func (f PropertyFile) End() int64 {
	return f.Offset + f.Size
}

// Within reports whether the range lies inside a file of length bytes.
func (f PropertyFile) Within(length int64) bool {
	return f.Offset >= 0 && f.Size >= 0 && f.Offset <= length && f.Size <= length-f.Offset
}

// ABConfig holds the A/B specific settings. Field order is the JSON key order.
type ABConfig struct {
	ForceSwitchSlot       bool           `json:"force_switch_slot"`
	PropertyFiles         []PropertyFile `json:"property_files"`
	VerifyPayloadMetadata bool           `json:"verify_payload_metadata"`
}

// UpdateConfig is the document written for the updater client.
// Fields are declared in sorted key order so encoding/json emits sorted keys.
type UpdateConfig struct {
	Banner        string      `json:"__"`
	ABConfig      ABConfig    `json:"ab_config"`
	ABInstallType InstallType `json:"ab_install_type"`
	ChangelogURL  string      `json:"changelog_url"`
	Name          string      `json:"name"`
	URL           string      `json:"url"`
}

// Banner renders the "__" value naming the generating tool.
func Banner(tool string) string {
	return fmt.Sprintf("*** Generated using %s ***", tool)
}

// PackageName derives the config name: the first letter of the install type,
// a space, and the package base name without its last four characters.
// The cut is unconditional, so "build.tar.gz" becomes "build.ta" and "a.z" becomes "".
func PackageName(installType InstallType, packagePath string) string {
	var prefix string
	if s := []rune(string(installType)); len(s) > 0 {
		prefix = string(s[0])
	}

	base := []rune(filepath.Base(packagePath))
	if len(base) > truncatedSuffixLength {
		base = base[:len(base)-truncatedSuffixLength]
	} else {
		base = nil
	}

	return prefix + " " + string(base)
}
