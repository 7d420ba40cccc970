package updateconfig

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPackageName covers the fixed four character truncation.
func TestPackageName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		installType InstallType
		path        string
		want        string
	}{
		{InstallTypeStreaming, "out/ota_002_package.zip", "S ota_002_package"},
		{InstallTypeNonStreaming, "/tmp/build-001.zip", "N build-001"},
		{InstallTypeNonStreaming, "build.tar.gz", "N build.ta"},
		{InstallTypeStreaming, "a.z", "S "},
		{InstallTypeStreaming, "пакет.zip", "S пакет"},
	}

	for _, c := range cases {
		require.Equal(t, c.want, PackageName(c.installType, c.path), c.path)
	}
}

// TestInstallType checks parsing, flag semantics and JSON handling.
func TestInstallType(t *testing.T) {
	t.Parallel()

	var it InstallType

	require.NoError(t, it.Set("STREAMING"))
	require.Equal(t, InstallTypeStreaming, it)
	require.False(t, it.IncludeNonStreaming())
	require.True(t, InstallTypeNonStreaming.IncludeNonStreaming())

	require.Error(t, it.Set("streaming"))
	require.Equal(t, InstallTypeStreaming, it)

	_, err := json.Marshal(InstallType("BOGUS"))
	require.Error(t, err)

	require.Error(t, json.Unmarshal([]byte(`"NOT_AVAILABLE"`), &it))
}

// TestPropertyFileWithin checks bounds without overflowing offset+size.
func TestPropertyFileWithin(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		file PropertyFile
		want bool
	}{
		"inside":          {PropertyFile{Filename: "a", Offset: 10, Size: 20}, true},
		"ends at length":  {PropertyFile{Filename: "a", Offset: 90, Size: 10}, true},
		"empty at end":    {PropertyFile{Filename: "a", Offset: 100, Size: 0}, true},
		"past end":        {PropertyFile{Filename: "a", Offset: 95, Size: 10}, false},
		"offset past end": {PropertyFile{Filename: "a", Offset: 101, Size: 0}, false},
		"sum overflows":   {PropertyFile{Filename: "a", Offset: math.MaxInt64, Size: 10}, false},
		"huge size":       {PropertyFile{Filename: "a", Offset: 10, Size: math.MaxInt64}, false},
		"negative offset": {PropertyFile{Filename: "a", Offset: -1, Size: 1}, false},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, c.want, c.file.Within(100))
		})
	}
}
