package payload

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// Magic is the first four bytes of any update payload.
	Magic = "CrAU"

	// HeaderSize is magic + version + manifest size + metadata signature size.
	HeaderSize = 4 + 8 + 8 + 4
)

var errBadMagic = errors.New("invalid payload magic")

// Header is the big-endian header that begins payload.bin.
type Header struct {
	Version               uint64
	ManifestSize          uint64
	MetadataSignatureSize uint32
}

// ReadHeader decodes the header from the start of r.
func ReadHeader(r io.Reader) (*Header, error) {
	var raw [HeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, fmt.Errorf("read payload header: %w", err)
	}

	if string(raw[:4]) != Magic {
		return nil, fmt.Errorf("%w: %x", errBadMagic, raw[:4])
	}

	return &Header{
		Version:               binary.BigEndian.Uint64(raw[4:12]),
		ManifestSize:          binary.BigEndian.Uint64(raw[12:20]),
		MetadataSignatureSize: binary.BigEndian.Uint32(raw[20:24]),
	}, nil
}

// MetadataSize is the length of the header, manifest and metadata signature,
// the prefix a client verifies before downloading the rest of the payload.
func (h *Header) MetadataSize() uint64 {
	return HeaderSize + h.ManifestSize + uint64(h.MetadataSignatureSize)
}

// Encode renders h back to its wire form. Tests use it to build payloads.
func (h *Header) Encode() []byte {
	out := make([]byte, HeaderSize)
	copy(out, Magic)
	binary.BigEndian.PutUint64(out[4:12], h.Version)
	binary.BigEndian.PutUint64(out[12:20], h.ManifestSize)
	binary.BigEndian.PutUint32(out[20:24], h.MetadataSignatureSize)

	return out
}
