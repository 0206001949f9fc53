package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	driver "github.com/go-sql-driver/mysql"

	"hotel_lookup/internal/domain"
)

// errNoSuchTable is ER_NO_SUCH_TABLE.
const errNoSuchTable = 1146

// batch bounds the rows per multi-value INSERT.
const batch = 500

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

var validName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func validTable(table string) error {
	if !validName.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

// mapErr turns the driver's missing-table error into domain.ErrTableNotFound.
func mapErr(table string, err error) error {
	var me *driver.MySQLError
	if errors.As(err, &me) && me.Number == errNoSuchTable {
		return fmt.Errorf("%s: %w", table, domain.ErrTableNotFound)
	}
	return err
}

func (r *Repo) CreateTable(ctx context.Context, table string) error {
	if err := validTable(table); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(createTableSQL, table))
	return err
}

func (r *Repo) DropTable(ctx context.Context, table string) error {
	if err := validTable(table); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(dropTableSQL, table))
	return err
}

func (r *Repo) Count(ctx context.Context, table string) (int, error) {
	if err := validTable(table); err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, fmt.Sprintf(countSQL, table)).Scan(&n); err != nil {
		return 0, mapErr(table, err)
	}
	return n, nil
}

func (r *Repo) Upsert(ctx context.Context, table string, rs []domain.HotelRecord) error {
	if err := validTable(table); err != nil {
		return err
	}
	for start := 0; start < len(rs); start += batch {
		end := min(start+batch, len(rs))
		chunk := rs[start:end]

		values := make([]string, 0, len(chunk))
		args := make([]any, 0, len(chunk)*2)
		for _, h := range chunk {
			values = append(values, "(?,?)")
			args = append(args, h.ID, h.Name)
		}
		q := fmt.Sprintf(upsertPrefix, table) + strings.Join(values, ",") + upsertOnDup
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return mapErr(table, err)
		}
	}
	return nil
}

func (r *Repo) Match(ctx context.Context, table, pattern string) ([]domain.HotelRecord, error) {
	return r.query(ctx, table, fmt.Sprintf(matchSQL, table), pattern)
}

func (r *Repo) All(ctx context.Context, table string) ([]domain.HotelRecord, error) {
	return r.query(ctx, table, fmt.Sprintf(allSQL, table))
}

func (r *Repo) query(ctx context.Context, table, q string, args ...any) ([]domain.HotelRecord, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr(table, err)
	}
	defer rows.Close()

	var out []domain.HotelRecord
	for rows.Next() {
		var h domain.HotelRecord
		var name sql.NullString
		if err := rows.Scan(&h.ID, &name); err != nil {
			return nil, err
		}
		if name.Valid {
			h.Name = name.String
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
