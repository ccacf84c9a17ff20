package storage

import (
	"errors"
)

var (
	// ErrObjectNotFound is returned by Get for a missing key. Callers
	// reading prior summaries branch on it to start from zero totals.
	ErrObjectNotFound = errors.New("object not found")

	// ErrObjectExists is returned by Put with overwrite disabled when
	// the key is already taken.
	ErrObjectExists = errors.New("object already exists")
)

// ObjectStore is the durable blob boundary of the pipeline: buckets
// holding byte objects addressed by key.
type ObjectStore interface {
	BucketExists(bucket string) (bool, error)
	CreateBucket(bucket string) error
	Get(bucket, key string) ([]byte, error)
	Put(bucket, key string, data []byte, overwrite bool) error
}
