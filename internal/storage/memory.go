package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MemoryStore keeps objects in memory. Failures can be injected per path prefix.
type MemoryStore struct {
	mu        sync.RWMutex
	baseURL   string
	objects   map[string]MemoryObject
	putErrs   map[string]error
	removeErr error
	puts      int
}

type MemoryObject struct {
	Data        []byte
	ContentType string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]MemoryObject),
		putErrs: make(map[string]error),
	}
}

// FailPuts makes every Put under prefix return err.
func (s *MemoryStore) FailPuts(prefix string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putErrs[prefix] = err
}

// FailRemoves makes every Remove return err without deleting anything.
func (s *MemoryStore) FailRemoves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeErr = err
}

func (s *MemoryStore) Put(ctx context.Context, path string, body io.Reader, size int64, contentType string) (string, error) {
	s.mu.Lock()
	s.puts++
	for prefix, err := range s.putErrs {
		if strings.HasPrefix(path, prefix) {
			s.mu.Unlock()
			return "", err
		}
	}
	s.mu.Unlock()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if size >= 0 && int64(len(data)) != size {
		return "", fmt.Errorf("put %s: size mismatch: declared %d, read %d", path, size, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[path]; exists {
		return "", fmt.Errorf("put %s: object already exists", path)
	}
	s.objects[path] = MemoryObject{Data: data, ContentType: contentType}
	return s.PublicURL(path), nil
}

func (s *MemoryStore) Remove(ctx context.Context, paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removeErr != nil {
		return s.removeErr
	}

	var errs []error
	for _, p := range paths {
		if _, ok := s.objects[p]; !ok {
			errs = append(errs, fmt.Errorf("remove %s: no such object", p))
			continue
		}
		delete(s.objects, p)
	}
	return errors.Join(errs...)
}

func (s *MemoryStore) PublicURL(path string) string {
	return s.baseURL + "/" + escapeKey(path)
}

func (s *MemoryStore) Get(path string) (MemoryObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	return obj, ok
}

// Paths returns the stored object paths in no particular order.
func (s *MemoryStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.objects))
	for p := range s.objects {
		paths = append(paths, p)
	}
	return paths
}

// PutCalls counts Put attempts, including failed ones.
func (s *MemoryStore) PutCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
