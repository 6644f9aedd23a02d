// Package minio provides a blobstore.BlobStore backed by MinIO and other
// S3-compatible object storage.
package minio
