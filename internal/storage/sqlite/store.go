package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"hotel_lookup/internal/domain"
)

// Store keeps the hotel lookup tables in an embedded SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var validName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func validTable(table string) error {
	if !validName.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

func (s *Store) CreateTable(ctx context.Context, table string) error {
	if err := validTable(table); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(createTableSQL, table))
	return err
}

func (s *Store) DropTable(ctx context.Context, table string) error {
	if err := validTable(table); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(dropTableSQL, table))
	return err
}

func (s *Store) exists(ctx context.Context, table string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, tableExistsSQL, table).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Count(ctx context.Context, table string) (int, error) {
	if err := validTable(table); err != nil {
		return 0, err
	}
	ok, err := s.exists(ctx, table)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s: %w", table, domain.ErrTableNotFound)
	}
	var n int
	err = s.db.QueryRowContext(ctx, fmt.Sprintf(countSQL, table)).Scan(&n)
	return n, err
}

// Upsert writes one page in a single transaction.
func (s *Store) Upsert(ctx context.Context, table string, rs []domain.HotelRecord) error {
	if err := validTable(table); err != nil {
		return err
	}
	if len(rs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(upsertHotelSQL, table))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rs {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Name, strings.ToLower(r.Name)); err != nil {
			return fmt.Errorf("upsert hotel %d: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Match(ctx context.Context, table, pattern string) ([]domain.HotelRecord, error) {
	return s.query(ctx, table, fmt.Sprintf(matchSQL, table), strings.ToLower(pattern))
}

func (s *Store) All(ctx context.Context, table string) ([]domain.HotelRecord, error) {
	return s.query(ctx, table, fmt.Sprintf(allSQL, table))
}

func (s *Store) query(ctx context.Context, table, q string, args ...any) ([]domain.HotelRecord, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}
	ok, err := s.exists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", table, domain.ErrTableNotFound)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HotelRecord
	for rows.Next() {
		var r domain.HotelRecord
		var name sql.NullString
		if err := rows.Scan(&r.ID, &name); err != nil {
			return nil, err
		}
		r.Name = name.String
		out = append(out, r)
	}
	return out, rows.Err()
}
