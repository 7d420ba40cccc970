// Package payload reads the fixed header of an update_engine payload
// (payload.bin) to find where its signed metadata ends.
package payload
