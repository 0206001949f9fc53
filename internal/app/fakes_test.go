package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"hotel_lookup/internal/app"
	"hotel_lookup/internal/domain"
	"hotel_lookup/internal/storage/memory"
)

// ---- fakes ----

type fakeCatalog struct {
	mu      sync.Mutex
	cities  map[string][]domain.City
	hotels  map[domain.PlaceID][]domain.HotelRecord
	details map[int64]json.RawMessage
	err     error

	// failOnce fails the first ListHotels at each listed offset.
	failOnce map[int]error
	// gate, when set, holds every ListHotels call until it is closed.
	gate     chan struct{}

	cityCalls, hotelCalls, detailCalls int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		cities:  map[string][]domain.City{},
		hotels:  map[domain.PlaceID][]domain.HotelRecord{},
		details: map[int64]json.RawMessage{},
	}
}

func page[T any](all []T, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	return all[offset:min(offset+app.PageSize, len(all))]
}

func (f *fakeCatalog) ListCities(ctx context.Context, country string, offset int) ([]domain.City, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cityCalls++
	if f.err != nil {
		return nil, f.err
	}
	return page(f.cities[country], offset), nil
}

func (f *fakeCatalog) ListHotels(ctx context.Context, place domain.PlaceID, offset int) ([]domain.HotelRecord, error) {
	f.mu.Lock()
	f.hotelCalls++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if err, ok := f.failOnce[offset]; ok {
		delete(f.failOnce, offset)
		return nil, err
	}
	return page(f.hotels[place], offset), nil
}

func (f *fakeCatalog) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hotelCalls
}

func (f *fakeCatalog) HotelDetails(ctx context.Context, place domain.PlaceID, hotelID int64) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[hotelID]
	if !ok {
		return json.RawMessage(`[]`), nil
	}
	return d, nil
}

func (f *fakeCatalog) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cityCalls + f.hotelCalls + f.detailCalls
}

// countingStore records every storage access.
type countingStore struct {
	*memory.Store
	mu    sync.Mutex
	calls int
}

func newCountingStore() *countingStore { return &countingStore{Store: memory.New()} }

func (s *countingStore) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *countingStore) CreateTable(ctx context.Context, table string) error {
	s.hit()
	return s.Store.CreateTable(ctx, table)
}
func (s *countingStore) DropTable(ctx context.Context, table string) error {
	s.hit()
	return s.Store.DropTable(ctx, table)
}
func (s *countingStore) Count(ctx context.Context, table string) (int, error) {
	s.hit()
	return s.Store.Count(ctx, table)
}
func (s *countingStore) Upsert(ctx context.Context, table string, rs []domain.HotelRecord) error {
	s.hit()
	return s.Store.Upsert(ctx, table, rs)
}
func (s *countingStore) Match(ctx context.Context, table, pattern string) ([]domain.HotelRecord, error) {
	s.hit()
	return s.Store.Match(ctx, table, pattern)
}
func (s *countingStore) All(ctx context.Context, table string) ([]domain.HotelRecord, error) {
	s.hit()
	return s.Store.All(ctx, table)
}

type fakeCache struct {
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

// ---- fixtures ----

const madrid domain.PlaceID = -390625

func hotels(n int) []domain.HotelRecord {
	out := make([]domain.HotelRecord, n)
	for i := range out {
		out[i] = domain.HotelRecord{ID: int64(i + 1), Name: fmt.Sprintf("Hotel %04d", i+1)}
	}
	return out
}

type fixture struct {
	catalog  *fakeCatalog
	store    *countingStore
	registry *app.Registry
	cache    *app.LocalCache
}

func newFixture(rows ...domain.HotelRecord) *fixture {
	fc := newFakeCatalog()
	fc.hotels[madrid] = rows
	st := newCountingStore()
	reg := app.NewRegistry(map[string]domain.PlaceID{"madrid": madrid}, fc, nil)
	return &fixture{catalog: fc, store: st, registry: reg, cache: app.NewLocalCache(st, reg, fc)}
}

func (f *fixture) resolver(strict bool) *app.Resolver { return app.NewResolver(f.cache, strict) }
