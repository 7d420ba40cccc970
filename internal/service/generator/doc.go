// Package generator builds the update config for an A/B OTA package and
// writes it as JSON.
//
// The Builder opens the package, asks a property-files provider for the byte
// ranges a streaming client needs and assembles the document. Run wraps it
// with output path validation and the atomic file write.
package generator
