// Package storage persists verified derivatives to an S3-compatible bucket.
// Every upload carries the artifact checksum and the acknowledgement token is
// compared against it, so a corrupted transfer fails the file rather than
// registering a bad object.
package storage
