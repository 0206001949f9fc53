package domain

import (
	"context"
	"encoding/json"
)

// CatalogClient is the remote hotel catalog. List calls return one page
// starting at offset; an empty page means the listing is exhausted.
type CatalogClient interface {
	ListCities(ctx context.Context, country string, offset int) ([]City, error)
	ListHotels(ctx context.Context, place PlaceID, offset int) ([]HotelRecord, error)
	HotelDetails(ctx context.Context, place PlaceID, hotelID int64) (json.RawMessage, error)
}

// HotelStore persists one (hotel_id, name) table per place.
// Count returns ErrTableNotFound (wrapped) when the table was never created.
// Match applies LIKE semantics with Unicode case folding ("%ángel%" matches
// "Hostal Ángel Sol") and returns rows in hotel_id order. The MySQL store's
// collation additionally ignores accents.
// DropTable of a missing table is not an error.
type HotelStore interface {
	CreateTable(ctx context.Context, table string) error
	DropTable(ctx context.Context, table string) error
	Count(ctx context.Context, table string) (int, error)
	Upsert(ctx context.Context, table string, rs []HotelRecord) error
	Match(ctx context.Context, table, pattern string) ([]HotelRecord, error)
	All(ctx context.Context, table string) ([]HotelRecord, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
