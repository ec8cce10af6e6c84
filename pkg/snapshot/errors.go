package snapshot

import "errors"

var (
	// ErrSerialization indicates a snapshot could not be encoded to or decoded from JSON.
	ErrSerialization = errors.New("snapshot serialization failed")

	// ErrCompression indicates gzip compression or decompression failed.
	ErrCompression = errors.New("snapshot compression failed")

	// ErrNodeNotFound indicates the snapshot holds no entry for the requested node.
	ErrNodeNotFound = errors.New("node not found in snapshot")
)
