package updateconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const indent = "    "

// Marshal encodes cfg with sorted keys, four-space indentation and unescaped
// HTML characters. The same value always yields the same bytes.
func Marshal(cfg *UpdateConfig) ([]byte, error) {
	if !cfg.ABInstallType.Valid() {
		return nil, fmt.Errorf("%w: ab_install_type %q", ErrSchema, cfg.ABInstallType)
	}

	doc := *cfg
	if doc.ABConfig.PropertyFiles == nil {
		doc.ABConfig.PropertyFiles = []PropertyFile{}
	}

	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", indent)

	if err := encoder.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode update config: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode validates data against the update config schema and decodes it.
// Unknown keys are allowed, as clients ignore them.
func Decode(data []byte) (*UpdateConfig, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var cfg UpdateConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}

	return &cfg, nil
}
