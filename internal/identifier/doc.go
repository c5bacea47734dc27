// Package identifier derives component identifiers and storage keys.
//
// Everything here is a pure function over string inputs: random component id
// generation, folder directory name normalization, and the hierarchy-derived
// storage key scheme. No network or filesystem access is involved, which
// keeps key derivation independently testable and referentially transparent.
package identifier
