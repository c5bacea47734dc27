// Package catalog is the HTTP client for the archival description API.
//
// It models the catalog's JSON payloads as explicit record structs
// (archival objects, digital objects, components, file versions) rather than
// loose maps, authenticates with session tokens, and surfaces non-2xx
// responses as typed errors so callers can distinguish "record missing" from
// "identifier already taken" from transport failure.
package catalog
