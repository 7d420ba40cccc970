package updateconfig

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	entrySeparator = ","
	fieldSeparator = ":"
	fieldsPerEntry = 3
)

// ParsePropertyFiles turns a "filename:offset:size,..." string into entries,
// keeping the input order.
func ParsePropertyFiles(s string) ([]PropertyFile, error) {
	elements := strings.Split(s, entrySeparator)
	files := make([]PropertyFile, 0, len(elements))

	for i, element := range elements {
		file, err := parsePropertyFile(element)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d %q: %w", ErrFormat, i, element, err)
		}

		files = append(files, file)
	}

	return files, nil
}

func parsePropertyFile(element string) (PropertyFile, error) {
	fields := strings.Split(element, fieldSeparator)
	if len(fields) != fieldsPerEntry {
		return PropertyFile{}, fmt.Errorf("want %d fields, got %d", fieldsPerEntry, len(fields))
	}

	if fields[0] == "" {
		return PropertyFile{}, errEmptyFilename
	}

	offset, err := parseNonNegative(fields[1])
	if err != nil {
		return PropertyFile{}, fmt.Errorf("offset: %w", err)
	}

	size, err := parseNonNegative(fields[2])
	if err != nil {
		return PropertyFile{}, fmt.Errorf("size: %w", err)
	}

	return PropertyFile{
		Filename: fields[0],
		Offset:   offset,
		Size:     size,
	}, nil
}

// parseNonNegative accepts plain base-10 digits only, so signs and spaces fail.
func parseNonNegative(s string) (int64, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("%q: %w", s, errNotDecimal)
	}

	return strconv.ParseInt(s, 10, 64)
}

// FormatPropertyFiles is the inverse of ParsePropertyFiles.
func FormatPropertyFiles(files []PropertyFile) string {
	tokens := make([]string, 0, len(files))
	for _, f := range files {
		tokens = append(tokens, f.Filename+fieldSeparator+
			strconv.FormatInt(f.Offset, 10)+fieldSeparator+
			strconv.FormatInt(f.Size, 10))
	}

	return strings.Join(tokens, entrySeparator)
}
