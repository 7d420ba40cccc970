package payload

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestReadHeader decodes a header written by Encode.
func TestReadHeader(t *testing.T) {
	t.Parallel()

	want := &Header{Version: 2, ManifestSize: 600, MetadataSignatureSize: 54}

	got, err := ReadHeader(bytes.NewReader(want.Encode()))
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.EqualValues(t, HeaderSize+600+54, got.MetadataSize())
}

// TestReadHeader_Errors covers bad magic and short input.
func TestReadHeader_Errors(t *testing.T) {
	t.Parallel()

	raw := (&Header{Version: 2}).Encode()
	copy(raw, "PK\x03\x04")

	_, err := ReadHeader(bytes.NewReader(raw))
	require.ErrorIs(t, err, errBadMagic)

	_, err = ReadHeader(bytes.NewReader([]byte(Magic)))
	require.Error(t, err)
}
