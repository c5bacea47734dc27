// Package exiftool wraps the exiftool CLI for in-place descriptive metadata
// stamping and for reading technical image metadata back from derivatives.
package exiftool
