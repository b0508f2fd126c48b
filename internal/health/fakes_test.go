package health

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/avaprobe/internal/cache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDatabase struct {
	mu          sync.Mutex
	pingErr     error
	selectErr   error
	pingCalls   int
	selectCalls int
}

func (f *fakeDatabase) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingCalls++
	return f.pingErr
}

func (f *fakeDatabase) SelectOne(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectCalls++
	return f.selectErr
}

func (f *fakeDatabase) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingCalls + f.selectCalls
}

type fakeBackend struct {
	mu      sync.Mutex
	pingErr error
	n       int
}

func (f *fakeBackend) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return f.pingErr
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

type fakeCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	setErr   error
	getErr   error
	delErr   error
	override []byte
	lastTTL  time.Duration
	keys     []string
	n        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	f.keys = append(f.keys, key)
	f.lastTTL = ttl
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.override != nil {
		return f.override, nil
	}
	v, ok := f.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.data, key)
	return nil
}

func (f *fakeCache) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

func (f *fakeCache) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

type fakeDisk struct {
	mu    sync.Mutex
	usage DiskUsage
	err   error
	paths []string
}

func (f *fakeDisk) Usage(path string) (DiskUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	return f.usage, f.err
}

func (f *fakeDisk) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.paths)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testDeps struct {
	db      *fakeDatabase
	backend *fakeBackend
	cache   *fakeCache
	disk    *fakeDisk
	clock   *fakeClock
}

func newTestDeps() *testDeps {
	return &testDeps{
		db:      &fakeDatabase{},
		backend: &fakeBackend{},
		cache:   newFakeCache(),
		disk:    &fakeDisk{usage: DiskUsage{Total: 100 * bytesPerGB, Free: 50 * bytesPerGB}},
		clock:   &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
}

func (d *testDeps) totalCalls() int {
	return d.db.calls() + d.backend.calls() + d.cache.calls() + d.disk.calls()
}

func testSettings() Settings {
	s := DefaultSettings()
	s.App = AppInfo{Name: "probe-test", Environment: "production", Version: "2.3.4"}
	s.ExpectedToken = "s3cret"
	s.Local = false
	return s
}

func newTestAggregator(d *testDeps, s Settings) *Aggregator {
	return NewAggregator(s,
		WithDatabase(d.db),
		WithCacheBackend(d.backend),
		WithAppCache(d.cache),
		WithDiskStats(d.disk),
		WithClock(d.clock),
	)
}
