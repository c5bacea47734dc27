// Package config loads, normalizes, and validates Distillery configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for catalog
// credentials. The Config type centralizes every knob the pipeline and CLI
// need, so source/completed directories, catalog connection details, and the
// storage bucket are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
