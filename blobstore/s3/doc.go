// Package s3 stores classifier snapshots in Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", []s3.Option{s3.WithPrefix("models/iris")})
//	if err != nil { ... }
//	err = clf.Publish(ctx, store, "snap-0001.dknn")
//
// Store issues ranged GETs for reads and multipart uploads for writes.
// DDBCommitStore adds a DynamoDB-backed CURRENT pointer for concurrent
// publishers.
package s3
