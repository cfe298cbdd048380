package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/google/uuid"
)

// MediaStorage hosts uploaded media (avatars, covers, videos, thumbnails)
// and hands back a public URL. Callers never see raw bytes again after
// upload.
type MediaStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds a collision-free key under the given folder, keeping the
// original extension so content type survives a round trip.
func ObjectKey(folder, filename string) string {
	return fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), path.Ext(filename))
}

// InMemoryMediaStorage is the test double. URLs use a fake scheme so tests
// can assert the value was persisted without a network.
type InMemoryMediaStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewInMemoryMediaStorage() *InMemoryMediaStorage {
	return &InMemoryMediaStorage{objects: make(map[string][]byte)}
}

func (s *InMemoryMediaStorage) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return "memory://" + key, nil
}

func (s *InMemoryMediaStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryMediaStorage) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}
