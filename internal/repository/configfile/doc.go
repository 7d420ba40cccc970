// Package configfile persists update config documents on disk.
package configfile
