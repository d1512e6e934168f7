package pagecache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gridwell/jsongrid/internal/db"
	"github.com/gridwell/jsongrid/internal/domain"
)

// --- Mocks ---

type mockStore struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	setHits int
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) GetMulti(_ context.Context, keys []string) ([][]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.data[k]
	}
	return out, nil
}

func (m *mockStore) SetMulti(_ context.Context, entries []db.Entry, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setHits++
	for _, e := range entries {
		m.data[e.Key] = e.Value
		m.ttls[e.Key] = ttl
	}
	return nil
}

func newCache(s store) *Cache {
	return New(s, Config{KeyPrefix: "jsongrid:", DefaultTTL: 300 * time.Second, MaxEntryBytes: 100 * 1024}, nil, zap.NewNop())
}

func countingProducer(content any, err error) (Producer, *int) {
	calls := 0
	return func(context.Context) (any, error) {
		calls++
		return content, err
	}, &calls
}

// --- Tests ---

func TestFetch_ColdStoreCallsProducerOnce(t *testing.T) {
	s := newMockStore()
	c := newCache(s)
	content := []any{
		map[string]any{"id": float64(1)},
		map[string]any{"id": float64(2)},
	}
	produce, calls := countingProducer(content, nil)

	got, err := c.Fetch(context.Background(), "http://api.example.com/items", produce, "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected 1 producer call, got %d", *calls)
	}
	if !reflect.DeepEqual(got, content) {
		t.Errorf("expected fresh content back, got %v", got)
	}

	// N elements + 1 index entry.
	if len(s.data) != 3 {
		t.Errorf("expected 3 stored entries, got %d: %v", len(s.data), keysOf(s.data))
	}
	if _, ok := s.data["jsongrid:httpapiexamplecomitems.keys"]; !ok {
		t.Errorf("missing index entry: %v", keysOf(s.data))
	}
}

func TestFetch_WarmStoreSkipsProducer(t *testing.T) {
	s := newMockStore()
	c := newCache(s)
	content := []any{
		map[string]any{"id": float64(1)},
		map[string]any{"id": float64(2)},
	}

	produce, calls := countingProducer(content, nil)
	first, err := c.Fetch(context.Background(), "http://api.example.com/items", produce, "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := c.Fetch(context.Background(), "http://api.example.com/items", produce, "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected producer not called on warm store, got %d calls", *calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected deep-equal content across hits:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestFetch_ObjectContentRoundTrip(t *testing.T) {
	s := newMockStore()
	c := newCache(s)
	content := map[string]any{
		"alpha": map[string]any{"v": float64(1)},
		"beta":  "x",
	}

	produce, _ := countingProducer(content, nil)
	if _, err := c.Fetch(context.Background(), "http://x.co/obj", produce, "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := c.Fetch(context.Background(), "http://x.co/obj", produce, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, content) {
		t.Errorf("expected object round-trip, got %v", got)
	}
}

func TestFetch_MissingChunkSkipped(t *testing.T) {
	s := newMockStore()
	c := newCache(s)
	content := []any{
		map[string]any{"id": float64(1)},
		map[string]any{"id": float64(2)},
	}

	produce, _ := countingProducer(content, nil)
	if _, err := c.Fetch(context.Background(), "http://x.co/items", produce, "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate one chunk expiring independently of the index.
	delete(s.data, "jsongrid:httpxcoitems.0")

	got, err := c.Fetch(context.Background(), "http://x.co/items", produce, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr, ok := got.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("expected 1 surviving element, got %v", got)
	}
	if !reflect.DeepEqual(arr[0], map[string]any{"id": float64(2)}) {
		t.Errorf("unexpected surviving element: %v", arr[0])
	}
}

func TestFetch_ExpiryMinutesParsed(t *testing.T) {
	s := newMockStore()
	c := newCache(s)
	produce, _ := countingProducer([]any{map[string]any{"a": float64(1)}}, nil)

	if _, err := c.Fetch(context.Background(), "http://x.co/a", produce, "5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ttl := s.ttls["jsongrid:httpxcoa.keys"]; ttl != 5*time.Minute {
		t.Errorf("expected 5m TTL, got %v", ttl)
	}
}

func TestFetch_InvalidExpiryFallsBack(t *testing.T) {
	for _, raw := range []string{"", "abc", "-1", "0"} {
		s := newMockStore()
		c := newCache(s)
		produce, _ := countingProducer([]any{map[string]any{"a": float64(1)}}, nil)

		if _, err := c.Fetch(context.Background(), "http://x.co/a", produce, raw); err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
		if ttl := s.ttls["jsongrid:httpxcoa.keys"]; ttl != 300*time.Second {
			t.Errorf("expiry %q: expected default 300s TTL, got %v", raw, ttl)
		}
	}
}

func TestFetch_ProducerErrorPropagates(t *testing.T) {
	s := newMockStore()
	c := newCache(s)
	wantErr := errors.New("fetch blew up")
	produce, _ := countingProducer(nil, wantErr)

	_, err := c.Fetch(context.Background(), "http://x.co/a", produce, "5")
	if !errors.Is(err, wantErr) {
		t.Errorf("expected producer error, got %v", err)
	}
	if len(s.data) != 0 {
		t.Errorf("expected nothing stored on producer failure, got %v", keysOf(s.data))
	}
}

func TestFetch_OversizedElementFails(t *testing.T) {
	s := newMockStore()
	c := New(s, Config{KeyPrefix: "jsongrid:", MaxEntryBytes: 16}, nil, zap.NewNop())
	produce, _ := countingProducer([]any{
		map[string]any{"big": "this element is larger than sixteen bytes"},
	}, nil)

	_, err := c.Fetch(context.Background(), "http://x.co/big", produce, "5")
	if !errors.Is(err, domain.ErrCacheCapacity) {
		t.Errorf("expected ErrCacheCapacity, got %v", err)
	}
}

func TestFetch_StoreWriteFailureServesFresh(t *testing.T) {
	s := newMockStore()
	s.setErr = errors.New("connection reset")
	c := newCache(s)
	content := []any{map[string]any{"a": float64(1)}}
	produce, _ := countingProducer(content, nil)

	got, err := c.Fetch(context.Background(), "http://x.co/a", produce, "5")
	if err != nil {
		t.Fatalf("expected fresh content despite write failure, got error: %v", err)
	}
	if !reflect.DeepEqual(got, content) {
		t.Errorf("unexpected content: %v", got)
	}
}

func TestStripKey(t *testing.T) {
	got := stripKey("https://api.example.com/v1/items?page=2")
	want := "httpsapiexamplecomv1itemspage2"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func keysOf(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
