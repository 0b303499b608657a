package logging

import (
	"context"
	"sync"
	"testing"
	"time"

	coremocks "github.com/amirhossein-jamali/health-logger/mocks/port/core"
	"github.com/stretchr/testify/mock"
)

// memoryKV is a minimal in-test key-value store that records writes
type memoryKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	sets   int
	ttls   []time.Duration
	getErr error
	setErr error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string][]byte)}
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[key], nil
}

func (m *memoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = append([]byte(nil), value...)
	m.sets++
	m.ttls = append(m.ttls, ttl)
	return nil
}

func (m *memoryKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryKV) setCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// settableClock is a time provider mock whose current time the test controls
type settableClock struct {
	*coremocks.MockTimeProvider
	mu  sync.Mutex
	now time.Time
}

func newSettableClock(t *testing.T, start time.Time) *settableClock {
	c := &settableClock{MockTimeProvider: coremocks.NewMockTimeProvider(t), now: start}
	c.EXPECT().Now().RunAndReturn(func() time.Time {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.now
	}).Maybe()
	c.EXPECT().WithTimeout(mock.Anything, mock.Anything).RunAndReturn(context.WithTimeout).Maybe()
	return c
}

func (c *settableClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}

func (c *settableClock) SetMillis(ms int64) {
	c.Set(time.UnixMilli(ms))
}

func messages(t *testing.T, s *Service) []string {
	t.Helper()
	entries, err := s.GetLogs(context.Background())
	if err != nil {
		t.Fatalf("GetLogs failed: %v", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message)
	}
	return out
}
