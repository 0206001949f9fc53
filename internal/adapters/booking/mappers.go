package booking

import (
	"fmt"
	"strconv"
	"strings"

	"hotel_lookup/internal/domain"
)

// Field aliases seen across API versions; first non-empty wins.
var cityAliases = map[string][]string{
	"id":      {"city_id", "id", "dest_id"},
	"name":    {"name", "city_name", "translations.name"},
	"country": {"countrycode", "country_code", "cc1"},
}

var hotelAliases = map[string][]string{
	"id":   {"hotel_id", "id"},
	"name": {"name", "hotel_name", "hotel_data.name"},
}

// lookupAny: nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func firstString(m map[string]any, paths []string) string {
	for _, p := range paths {
		if s, ok := lookupAny(m, p).(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// firstInt64 accepts float64 (JSON numbers) and numeric strings; the API
// returns ids either way depending on the endpoint.
func firstInt64(m map[string]any, paths []string) (int64, bool) {
	for _, p := range paths {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return int64(v), true
		case int64:
			return v, true
		case int:
			return int64(v), true
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// mapCities fails on a record without an id rather than dropping it, so a
// page never shrinks below what the remote actually returned.
func mapCities(rows []map[string]any) ([]domain.City, error) {
	out := make([]domain.City, 0, len(rows))
	for i, r := range rows {
		id, ok := firstInt64(r, cityAliases["id"])
		if !ok {
			return nil, fmt.Errorf("city record %d has no id", i)
		}
		out = append(out, domain.City{
			ID:      domain.PlaceID(id),
			Name:    firstString(r, cityAliases["name"]),
			Country: firstString(r, cityAliases["country"]),
		})
	}
	return out, nil
}

func mapHotels(rows []map[string]any) ([]domain.HotelRecord, error) {
	out := make([]domain.HotelRecord, 0, len(rows))
	for i, r := range rows {
		id, ok := firstInt64(r, hotelAliases["id"])
		if !ok {
			return nil, fmt.Errorf("hotel record %d has no id", i)
		}
		out = append(out, domain.HotelRecord{ID: id, Name: firstString(r, hotelAliases["name"])})
	}
	return out, nil
}
