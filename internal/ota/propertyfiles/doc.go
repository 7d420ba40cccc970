// Package propertyfiles produces the "filename:offset:size,..." string that
// describes where the entries a streaming A/B client needs live inside an OTA
// package.
//
// Two providers exist. Computed reads offsets from the zip structure of the
// finished package. Recorded returns the string the packaging pipeline stored
// in the package metadata.
package propertyfiles
