package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Memory is an in-process ObjectStore for tests and local runs.
type Memory struct {
	mu        sync.RWMutex
	objects   map[string]Object
	publicURL string
}

func NewMemory(publicURL string) *Memory {
	return &Memory{objects: make(map[string]Object), publicURL: publicURL}
}

func (m *Memory) Put(ctx context.Context, bucket, key string, body io.Reader, opts PutOptions) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read upload body: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id := bucket + "/" + key
	if _, ok := m.objects[id]; ok && !opts.Upsert {
		return ErrObjectExists
	}
	m.objects[id] = Object{
		Body:         data,
		ContentType:  opts.ContentType,
		CacheControl: cacheControlHeader(opts.CacheControl),
	}
	return nil
}

func (m *Memory) Get(ctx context.Context, bucket, key string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	obj.Body = append([]byte(nil), obj.Body...)
	return &obj, nil
}

// Remove deletes the given keys; missing keys are ignored.
func (m *Memory) Remove(ctx context.Context, bucket string, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.objects, bucket+"/"+k)
	}
	return nil
}

func (m *Memory) PublicURL(bucket, key string) string {
	return publicURL(m.publicURL, bucket, key)
}

// Len reports the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
