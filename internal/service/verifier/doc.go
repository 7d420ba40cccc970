// Package verifier checks an update config against the package it describes:
// every property file range must lie inside the package and address exactly
// the bytes of the entry it names.
package verifier
