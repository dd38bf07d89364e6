// Package blobstore stores classifier snapshots.
//
// A BlobStore holds immutable snapshot blobs plus a small CURRENT blob
// naming the latest published one. Readers resolve CURRENT and open the
// named snapshot; writers upload the snapshot first and then swap CURRENT.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, reads through mmap
//   - MemoryStore: in-process, for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - s3.DDBCommitStore: S3 plus a DynamoDB-backed CURRENT pointer
//   - minio.Store: MinIO and other S3-compatible servers
package blobstore
