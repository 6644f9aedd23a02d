// Package s3 provides a blobstore.BlobStore backed by Amazon S3 and a
// blobstore.CommitStore backed by DynamoDB conditional writes.
//
// S3 alone cannot express the compare-and-swap a current-checkpoint pointer
// needs under concurrent writers, so the commit pointer lives in a DynamoDB
// table keyed by (base_uri, version) and is advanced with a conditional put.
package s3
