package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hotel_lookup/internal/domain"
)

// Store is a process-local HotelStore. Tables live as long as the Store.
type Store struct {
	mu     sync.RWMutex
	tables map[string]map[int64]string
}

func New() *Store { return &Store{tables: map[string]map[int64]string{}} }

func (s *Store) CreateTable(ctx context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[table]; !ok {
		s.tables[table] = map[int64]string{}
	}
	return nil
}

func (s *Store) DropTable(ctx context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, table)
	return nil
}

func (s *Store) Count(ctx context.Context, table string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[table]
	if !ok {
		return 0, fmt.Errorf("%s: %w", table, domain.ErrTableNotFound)
	}
	return len(t), nil
}

func (s *Store) Upsert(ctx context.Context, table string, rs []domain.HotelRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[table]
	if !ok {
		return fmt.Errorf("%s: %w", table, domain.ErrTableNotFound)
	}
	for _, r := range rs {
		t[r.ID] = r.Name
	}
	return nil
}

func (s *Store) Match(ctx context.Context, table, pattern string) ([]domain.HotelRecord, error) {
	return s.rows(table, func(name string) bool { return Like(name, pattern) })
}

func (s *Store) All(ctx context.Context, table string) ([]domain.HotelRecord, error) {
	return s.rows(table, func(string) bool { return true })
}

// rows returns the matching rows in hotel_id order, like a primary key scan.
func (s *Store) rows(table string, keep func(string) bool) ([]domain.HotelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("%s: %w", table, domain.ErrTableNotFound)
	}
	var out []domain.HotelRecord
	for id, name := range t {
		if keep(name) {
			out = append(out, domain.HotelRecord{ID: id, Name: name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
