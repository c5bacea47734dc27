// Package arrangement resolves a folder's position in the collection
// hierarchy (repository, collection, series, subseries) from its catalog
// record. Resolution is a per-folder lookup, not a cache: catalog reads are
// proportional to hierarchy depth.
package arrangement
