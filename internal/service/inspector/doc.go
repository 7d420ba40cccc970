// Package inspector loads an update config from disk or from an update
// server, validates it and prints it.
package inspector
