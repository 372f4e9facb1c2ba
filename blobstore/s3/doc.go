// Package s3 backs the blobstore.Store interface with Amazon S3.
package s3
