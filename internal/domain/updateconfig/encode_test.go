package updateconfig

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleConfig() *UpdateConfig {
	return &UpdateConfig{
		Banner: Banner("gen-update-config"),
		ABConfig: ABConfig{
			ForceSwitchSlot: true,
			PropertyFiles: []PropertyFile{
				{Filename: "payload.bin", Offset: 2379, Size: 1000},
				{Filename: "metadata", Offset: 69, Size: 29},
			},
			VerifyPayloadMetadata: false,
		},
		ABInstallType: InstallTypeStreaming,
		ChangelogURL:  "https://example.com/changelog?a=1&b=2",
		Name:          "S ota",
		URL:           "file:///foo.bar",
	}
}

// TestMarshal_Layout pins the exact output bytes.
func TestMarshal_Layout(t *testing.T) {
	t.Parallel()

	const want = `{
    "__": "*** Generated using gen-update-config ***",
    "ab_config": {
        "force_switch_slot": true,
        "property_files": [
            {
                "filename": "payload.bin",
                "offset": 2379,
                "size": 1000
            },
            {
                "filename": "metadata",
                "offset": 69,
                "size": 29
            }
        ],
        "verify_payload_metadata": false
    },
    "ab_install_type": "STREAMING",
    "changelog_url": "https://example.com/changelog?a=1&b=2",
    "name": "S ota",
    "url": "file:///foo.bar"
}
`

	got, err := Marshal(sampleConfig())
	require.NoError(t, err)
	require.Equal(t, want, string(got))
}

// TestMarshal_Deterministic checks two encodings are byte-identical.
func TestMarshal_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := Marshal(sampleConfig())
	require.NoError(t, err)

	second, err := Marshal(sampleConfig())
	require.NoError(t, err)

	require.Equal(t, first, second)
}

// TestMarshal_EmptyPropertyFiles keeps the list an array rather than null.
func TestMarshal_EmptyPropertyFiles(t *testing.T) {
	t.Parallel()

	cfg := sampleConfig()
	cfg.ABConfig.PropertyFiles = nil

	data, err := Marshal(cfg)
	require.NoError(t, err)
	require.Contains(t, string(data), `"property_files": []`)
}

// TestDecode_Roundtrip ensures Decode(Marshal(x)) equals x regardless of input key order.
func TestDecode_Roundtrip(t *testing.T) {
	t.Parallel()

	want := sampleConfig()

	data, err := Marshal(want)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// Same document with shuffled keys and an unknown client-side field.
	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))

	generic["build_date_utc"] = 0

	reordered, err := json.Marshal(generic)
	require.NoError(t, err)

	got, err = Decode(reordered)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// TestDecode_SchemaViolations rejects documents the client could not use.
func TestDecode_SchemaViolations(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":         `{`,
		"bad install type": `{"name":"x","url":"u","ab_install_type":"NOT_AVAILABLE","ab_config":{"property_files":[]}}`,
		"missing ab":       `{"name":"x","url":"u","ab_install_type":"STREAMING"}`,
		"negative offset": `{"name":"x","url":"u","ab_install_type":"STREAMING",` +
			`"ab_config":{"property_files":[{"filename":"a","offset":-1,"size":1}]}}`,
		"empty filename": `{"name":"x","url":"u","ab_install_type":"STREAMING",` +
			`"ab_config":{"property_files":[{"filename":"","offset":1,"size":1}]}}`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode([]byte(doc))
			require.ErrorIs(t, err, ErrSchema)
		})
	}
}
