package assets

import (
	"bytes"
	"context"
	"io"
	"sync"
)

type memObject struct {
	body        []byte
	contentType string
}

// Memory keeps assets in process memory.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) Put(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	key, err := NewKey(name, contentType)
	if err != nil {
		return "", err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[key] = memObject{body: body, contentType: contentTypeOf(key)}
	m.mu.Unlock()
	return key, nil
}

func (m *Memory) Open(_ context.Context, ref string) (io.ReadCloser, string, error) {
	if err := checkRef(ref); err != nil {
		return nil, "", err
	}
	m.mu.RLock()
	obj, ok := m.objects[ref]
	m.mu.RUnlock()
	if !ok {
		return nil, "", ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.body)), obj.contentType, nil
}

func (m *Memory) Delete(_ context.Context, ref string) error {
	if err := checkRef(ref); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[ref]; !ok {
		return ErrNotFound
	}
	delete(m.objects, ref)
	return nil
}

func (m *Memory) Close() error { return nil }
