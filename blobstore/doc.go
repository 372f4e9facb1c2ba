// Package blobstore abstracts the storage backends that graph snapshots
// are written to and restored from.
//
// Two local implementations ship with the package: LocalStore (a directory
// on the file system) and MemoryStore (for tests). The minio and s3
// subpackages back the same interface with object storage.
//
// Blobs are immutable: Put replaces a blob wholesale and Open always
// observes a complete write.
package blobstore
