// Package metadata reads the OTA metadata entries that the packaging pipeline
// stores under META-INF/com/android: the key=value text file and the
// OtaMetadata protobuf. Only the property_files map is decoded from the
// protobuf, with protowire, so no generated code is needed.
package metadata
