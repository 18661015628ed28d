package storage

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/secmon-lab/vatracker/pkg/domain/interfaces"
)

// MemoryBaseURL prefixes URLs handed out by the in-memory store
const MemoryBaseURL = "memory://" + DefaultBucket + "/"

// Memory keeps images in process memory for development and tests
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
	now     func() time.Time
}

var _ interfaces.ImageStore = &Memory{}

func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		now:     time.Now,
	}
}

func (m *Memory) Upload(ctx context.Context, userID string, contentType string, r io.Reader) (string, error) {
	data, err := PrepareImage(contentType, r)
	if err != nil {
		return "", err
	}

	object := ObjectName(userID, m.now())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[object] = data

	return MemoryBaseURL + object, nil
}

func (m *Memory) Delete(ctx context.Context, url string) error {
	object, err := objectFromURL(MemoryBaseURL, url)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, object)
	return nil
}

func (m *Memory) Owns(url string, userID string) bool {
	return ownedBy(MemoryBaseURL, url, userID)
}

// Get returns the stored bytes for an uploaded URL
func (m *Memory) Get(url string) ([]byte, bool) {
	object, err := objectFromURL(MemoryBaseURL, url)
	if err != nil {
		return nil, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[object]
	return data, ok
}

// Len returns the number of stored objects
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
