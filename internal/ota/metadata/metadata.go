package metadata

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	// EntryName is the text metadata entry inside an OTA package.
	EntryName = "META-INF/com/android/metadata"
	// ProtoEntryName is the protobuf metadata entry inside an OTA package.
	ProtoEntryName = "META-INF/com/android/metadata.pb"

	// PropertyFilesKey holds the A/B property-files string.
	PropertyFilesKey = "ota-property-files"
	// StreamingPropertyFilesKey holds the streaming-only property-files string.
	StreamingPropertyFilesKey = "ota-streaming-property-files"
)

// OtaMetadata field numbers.
const (
	propertyFilesField protowire.Number = 4
	mapKeyField        protowire.Number = 1
	mapValueField      protowire.Number = 2
)

// ParseText reads "key=value" lines. Blank lines and lines without '=' are skipped.
func ParseText(data []byte) map[string]string {
	values := make(map[string]string)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}

		values[strings.TrimSpace(key)] = value
	}

	return values
}

// ParsePropertyFiles returns the property_files map of an encoded OtaMetadata.
func ParsePropertyFiles(data []byte) (map[string]string, error) {
	values := make(map[string]string)

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("metadata tag: %w", protowire.ParseError(n))
		}

		data = data[n:]

		if num != propertyFilesField || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("metadata field %d: %w", num, protowire.ParseError(n))
			}

			data = data[n:]

			continue
		}

		entry, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, fmt.Errorf("property_files entry: %w", protowire.ParseError(n))
		}

		data = data[n:]

		key, value, err := parseMapEntry(entry)
		if err != nil {
			return nil, err
		}

		values[key] = value
	}

	return values, nil
}

func parseMapEntry(entry []byte) (string, string, error) {
	var key, value string

	for len(entry) > 0 {
		num, typ, n := protowire.ConsumeTag(entry)
		if n < 0 {
			return "", "", fmt.Errorf("map entry tag: %w", protowire.ParseError(n))
		}

		entry = entry[n:]

		if typ != protowire.BytesType || (num != mapKeyField && num != mapValueField) {
			n = protowire.ConsumeFieldValue(num, typ, entry)
			if n < 0 {
				return "", "", fmt.Errorf("map entry field %d: %w", num, protowire.ParseError(n))
			}

			entry = entry[n:]

			continue
		}

		s, n := protowire.ConsumeString(entry)
		if n < 0 {
			return "", "", fmt.Errorf("map entry field %d: %w", num, protowire.ParseError(n))
		}

		entry = entry[n:]

		if num == mapKeyField {
			key = s
		} else {
			value = s
		}
	}

	return key, value, nil
}

// AppendPropertyFiles encodes values as OtaMetadata.property_files entries.
// Keys are written in the order given.
func AppendPropertyFiles(b []byte, keys []string, values map[string]string) []byte {
	for _, key := range keys {
		var entry []byte
		entry = protowire.AppendTag(entry, mapKeyField, protowire.BytesType)
		entry = protowire.AppendString(entry, key)
		entry = protowire.AppendTag(entry, mapValueField, protowire.BytesType)
		entry = protowire.AppendString(entry, values[key])

		b = protowire.AppendTag(b, propertyFilesField, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}

	return b
}
