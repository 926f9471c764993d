package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var errUploadRejected = errors.New("upload rejected")

// MemoryStore keeps blobs in process. It backs tests and local runs without
// blob credentials.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failKey string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// FailOn makes Put fail for keys ending in suffix.
func (s *MemoryStore) FailOn(suffix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failKey = suffix
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) (*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failKey != "" && strings.HasSuffix(key, s.failKey) {
		return nil, errUploadRejected
	}
	s.objects[key] = append([]byte(nil), data...)
	return &Object{
		Key:         key,
		URL:         "memory://" + key,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

func (s *MemoryStore) Delete(_ context.Context, key, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
