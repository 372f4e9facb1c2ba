// Package minio backs the blobstore.Store interface with MinIO or any
// S3-compatible object storage reachable through the MinIO client.
package minio
