// Package minio stores classifier snapshots in MinIO or any other
// S3-compatible server (Ceph, Garage, SeaweedFS) using the MinIO client.
//
//	store, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", false, "models", "iris")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	clf, err := dknn.New[[]float32](embedder).LoadCurrent(ctx, store)
package minio
