// Package storage selects the HotelStore backend for the local cache.
package storage

import (
	"database/sql"
	"fmt"
	"io"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_lookup/internal/domain"
	"hotel_lookup/internal/storage/memory"
	mysqlrepo "hotel_lookup/internal/storage/mysql"
	"hotel_lookup/internal/storage/sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the store for driver and a closer releasing its connection.
func Open(driver, sqlitePath, mysqlDSN string) (domain.HotelStore, io.Closer, error) {
	switch driver {
	case "", DriverSQLite:
		s, err := sqlite.Open(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("path", sqlitePath).Msg("sqlite store open")
		return s, s, nil

	case DriverMySQL:
		db, err := sql.Open("mysql", mysqlDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open failed: %w", err)
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db.Ping failed: %w", err)
		}
		log.Debug().Msg("database connection ok")
		return mysqlrepo.New(db), db, nil

	case DriverMemory:
		return memory.New(), nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", driver)
}
