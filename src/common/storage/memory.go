package storage

import (
	"sync"
)

// MemoryStore is an in-process ObjectStore with the same semantics as
// the MinIO implementation, used by the pipeline tests.
type MemoryStore struct {
	mutex   sync.Mutex
	buckets map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]map[string][]byte),
	}
}

func (s *MemoryStore) BucketExists(bucket string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, exists := s.buckets[bucket]
	return exists, nil
}

func (s *MemoryStore) CreateBucket(bucket string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.buckets[bucket]; !exists {
		s.buckets[bucket] = make(map[string][]byte)
	}
	return nil
}

func (s *MemoryStore) Get(bucket, key string) ([]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	objects, exists := s.buckets[bucket]
	if !exists {
		return nil, ErrObjectNotFound
	}
	data, exists := objects[key]
	if !exists {
		return nil, ErrObjectNotFound
	}

	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

func (s *MemoryStore) Put(bucket, key string, data []byte, overwrite bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	objects, exists := s.buckets[bucket]
	if !exists {
		objects = make(map[string][]byte)
		s.buckets[bucket] = objects
	}
	if _, exists := objects[key]; exists && !overwrite {
		return ErrObjectExists
	}

	copied := make([]byte, len(data))
	copy(copied, data)
	objects[key] = copied
	return nil
}
