package repo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/depsize/pkg/errors"
	"github.com/matzehuels/depsize/pkg/maven"
)

// memCache is a minimal in-memory Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

func pomServer(t *testing.T, docs map[string]string, hits *int32) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			mu.Lock()
			*hits++
			mu.Unlock()
		}
		body, ok := docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
}

func TestFetchManifest(t *testing.T) {
	srv := pomServer(t, map[string]string{
		"/g/a/1/a-1.pom": "<project/>",
	}, nil)
	defer srv.Close()

	c := NewClient(Config{Repositories: []string{srv.URL}})
	location, body, err := c.FetchManifest(context.Background(), maven.Coordinate{GroupID: "g", ArtifactID: "a", Version: "1"})
	if err != nil {
		t.Fatalf("FetchManifest failed: %v", err)
	}
	if location != srv.URL+"/g/a/1/a-1.pom" {
		t.Errorf("location = %s", location)
	}
	if string(body) != "<project/>" {
		t.Errorf("body = %q", body)
	}
}

func TestFetchManifest_FallbackOrder(t *testing.T) {
	empty := pomServer(t, nil, nil)
	defer empty.Close()
	full := pomServer(t, map[string]string{"/g/a/1/a-1.pom": "<project/>"}, nil)
	defer full.Close()

	c := NewClient(Config{Repositories: []string{empty.URL, full.URL}})
	location, _, err := c.FetchManifest(context.Background(), maven.Coordinate{GroupID: "g", ArtifactID: "a", Version: "1"})
	if err != nil {
		t.Fatalf("FetchManifest failed: %v", err)
	}
	if !strings.HasPrefix(location, full.URL) {
		t.Errorf("expected manifest from second repository, got %s", location)
	}
}

func TestFetchManifest_Exhausted(t *testing.T) {
	empty := pomServer(t, nil, nil)
	defer empty.Close()

	c := NewClient(Config{Repositories: []string{empty.URL, empty.URL}})
	_, _, err := c.FetchManifest(context.Background(), maven.Coordinate{GroupID: "g", ArtifactID: "nope", Version: "1"})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND_ARTIFACT, got %v", err)
	}
	if !strings.Contains(err.Error(), "g:nope:1") {
		t.Errorf("error must name the coordinate: %v", err)
	}
}

func TestFetchManifest_CacheHit(t *testing.T) {
	var hits int32
	srv := pomServer(t, map[string]string{"/g/a/1/a-1.pom": "<project/>"}, &hits)
	defer srv.Close()

	mc := newMemCache()
	coord := maven.Coordinate{GroupID: "g", ArtifactID: "a", Version: "1"}

	c := NewClient(Config{Repositories: []string{srv.URL}, Cache: mc})
	for i := 0; i < 3; i++ {
		if _, _, err := c.FetchManifest(context.Background(), coord); err != nil {
			t.Fatalf("FetchManifest #%d failed: %v", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}

	// Refresh bypasses the cached response and goes back to the network.
	fresh := NewClient(Config{Repositories: []string{srv.URL}, Cache: mc, Refresh: true})
	if _, _, err := fresh.FetchManifest(context.Background(), coord); err != nil {
		t.Fatalf("refresh FetchManifest failed: %v", err)
	}
	if hits != 2 {
		t.Errorf("server hit %d times after refresh, want 2", hits)
	}
}

func TestFetchSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		switch r.URL.Path {
		case "/g/a/1/a-1.jar":
			w.Header().Set("Content-Length", "51200")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(Config{Repositories: []string{srv.URL}})

	size, ok := c.FetchSize(context.Background(), srv.URL+"/g/a/1/a-1.pom")
	if !ok || size != 51200 {
		t.Errorf("FetchSize = (%d, %v), want (51200, true)", size, ok)
	}

	if size, ok := c.FetchSize(context.Background(), srv.URL+"/g/missing/1/missing-1.pom"); ok || size != 0 {
		t.Errorf("missing artifact: FetchSize = (%d, %v), want (0, false)", size, ok)
	}
}

func TestFetchSize_CacheHit(t *testing.T) {
	var hits int32
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.Header().Set("Content-Length", "1024")
	}))
	defer srv.Close()

	c := NewClient(Config{Repositories: []string{srv.URL}, Cache: newMemCache()})
	for i := 0; i < 3; i++ {
		size, ok := c.FetchSize(context.Background(), srv.URL+"/g/a/1/a-1.pom")
		if !ok || size != 1024 {
			t.Fatalf("FetchSize #%d = (%d, %v)", i, size, ok)
		}
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}
