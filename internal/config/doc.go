// Package config defines the gen-update-config settings file and helpers to
// load, validate and save it in YAML format.
//
// Settings hold defaults for the generator flags, the property-files source,
// the log level and the HTTP timeout used when inspecting remote configs.
package config
