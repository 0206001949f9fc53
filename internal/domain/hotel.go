package domain

import (
	"encoding/json"
	"regexp"
	"strings"
)

// PlaceID identifies a city/region in the remote catalog. Ids never change
// once assigned, so they may be cached without expiry.
type PlaceID int64

// Place is a configured label bound to its remote id.
type Place struct {
	Label string
	ID    PlaceID
}

// Table returns the per-place cache table name.
func (p Place) Table() string { return TableName(p.Label) }

type City struct {
	ID      PlaceID `json:"city_id"`
	Name    string  `json:"name"`
	Country string  `json:"countrycode,omitempty"`
}

// HotelRecord is a (hotel_id, name) pair scoped to exactly one place.
type HotelRecord struct {
	ID   int64  `json:"hotel_id"`
	Name string `json:"name"`
}

type Query struct {
	Text  string
	Place string
	Fuzzy bool
}

// Match is a resolved hotel plus the strategy that found it
// ("exact" or one of the fuzzy strategy names).
type Match struct {
	Hotel    HotelRecord `json:"hotel"`
	Strategy string      `json:"strategy"`
}

// HotelInfo is a resolved hotel with its remote detail payload.
type HotelInfo struct {
	Match   Match           `json:"match"`
	Details json.RawMessage `json:"details"`
}

// NormalizeLabel folds a user supplied place label to its registry key.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

var nonIdent = regexp.MustCompile(`[^a-z0-9_]+`)

// TableName maps a place label to a safe SQL identifier, e.g. "hong kong" -> "hotels_hong_kong".
func TableName(label string) string {
	s := nonIdent.ReplaceAllString(NormalizeLabel(label), "_")
	return "hotels_" + strings.Trim(s, "_")
}
