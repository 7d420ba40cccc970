// Package updateconfig holds the update configuration document consumed by
// A/B updater clients: its types, the property-files triple parser, the
// deterministic JSON encoding and the schema used to validate documents.
package updateconfig
