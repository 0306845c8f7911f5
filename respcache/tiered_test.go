package respcache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// stubCache is a map-backed Cache for tiering tests
type stubCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	sets    int
	gets    int
	closed  bool
	lastTTL time.Duration
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (s *stubCache) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	val, ok := s.data[key]
	return val, ok
}

func (s *stubCache) Set(key string, val []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	s.lastTTL = ttl
	s.data[key] = val
}

func (s *stubCache) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

func (s *stubCache) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func TestTiered_GetChecksLayersInOrder(t *testing.T) {
	first := newStubCache()
	second := newStubCache()
	second.data["key"] = []byte("from-second")

	tc := NewTiered([]Cache{first, second})

	got, found := tc.Get("key")
	assert.True(t, found)
	assert.Equal(t, []byte("from-second"), got)
	assert.Equal(t, 1, first.gets)
	assert.Equal(t, 1, second.gets)
}

func TestTiered_FirstLayerHitSkipsSecond(t *testing.T) {
	first := newStubCache()
	first.data["key"] = []byte("from-first")
	second := newStubCache()

	tc := NewTiered([]Cache{first, second})

	got, found := tc.Get("key")
	assert.True(t, found)
	assert.Equal(t, []byte("from-first"), got)
	assert.Equal(t, 0, second.gets)
}

func TestTiered_Propagation(t *testing.T) {
	first := newStubCache()
	second := newStubCache()
	second.data["key"] = []byte("value")

	tc := NewTiered([]Cache{first, second}, WithPropagation(time.Minute))

	_, found := tc.Get("key")
	assert.True(t, found)

	// The hit is copied into the first layer with the propagation TTL
	assert.Equal(t, 1, first.sets)
	assert.Equal(t, time.Minute, first.lastTTL)
	assert.Equal(t, []byte("value"), first.data["key"])
}

func TestTiered_NoPropagationByDefault(t *testing.T) {
	first := newStubCache()
	second := newStubCache()
	second.data["key"] = []byte("value")

	tc := NewTiered([]Cache{first, second})

	_, found := tc.Get("key")
	assert.True(t, found)
	assert.Equal(t, 0, first.sets)
}

func TestTiered_SetWritesAllLayers(t *testing.T) {
	first := newStubCache()
	second := newStubCache()

	tc := NewTiered([]Cache{first, second})
	tc.Set("key", []byte("value"), time.Minute)

	assert.Equal(t, []byte("value"), first.data["key"])
	assert.Equal(t, []byte("value"), second.data["key"])
}

func TestTiered_DeleteRemovesFromAllLayers(t *testing.T) {
	first := newStubCache()
	first.data["key"] = []byte("value")
	second := newStubCache()
	second.data["key"] = []byte("value")

	tc := NewTiered([]Cache{first, second})
	tc.Delete("key")

	_, ok := first.data["key"]
	assert.False(t, ok)
	_, ok = second.data["key"]
	assert.False(t, ok)
}

func TestTiered_Empty(t *testing.T) {
	tc := NewTiered(nil)

	got, found := tc.Get("key")
	assert.False(t, found)
	assert.Nil(t, got)

	// Set and Delete on an empty tier must not panic
	tc.Set("key", []byte("value"), time.Minute)
	tc.Delete("key")
	assert.NoError(t, tc.Close())
}

func TestTiered_CloseClosesAllLayers(t *testing.T) {
	first := newStubCache()
	second := newStubCache()

	tc := NewTiered([]Cache{first, second})
	assert.NoError(t, tc.Close())
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}
