package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"

	server "hotel_lookup/internal/adapters/http_server"
	"hotel_lookup/internal/bootstrap"
	"hotel_lookup/internal/domain"
	"hotel_lookup/internal/shared"
)

// ---------- fake distribution API ----------

type fakeBooking struct {
	hotels  []domain.HotelRecord
	reject  atomic.Bool
	lists   atomic.Int32
	details atomic.Int32

	// failPage holds offset+1 of a hotel page answered once with an API error.
	failPage atomic.Int32
}

func (f *fakeBooking) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if u, p, ok := r.BasicAuth(); f.reject.Load() || !ok || u != "user" || p != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Authentication failure","code":401}`))
		return
	}
	q := r.URL.Query()
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/json/bookings.getCities":
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"city_id": -390625, "name": "Madrid", "countrycode": "es"},
		})
	case "/json/bookings.getHotels":
		if id := q.Get("hotel_ids"); id != "" {
			f.details.Add(1)
			fmt.Fprintf(w, `[{"hotel_id":%q,"city_id":%q,"stars":"4"}]`, id, q.Get("city_ids"))
			return
		}
		f.lists.Add(1)
		offset, _ := strconv.Atoi(q.Get("offset"))
		if f.failPage.CompareAndSwap(int32(offset+1), 0) {
			_, _ = w.Write([]byte(`{"message":"Service temporarily unavailable","code":1001}`))
			return
		}
		rows := []map[string]any{}
		for i := offset; i < len(f.hotels) && i < offset+1000; i++ {
			rows = append(rows, map[string]any{
				"hotel_id": strconv.FormatInt(f.hotels[i].ID, 10),
				"name":     f.hotels[i].Name,
			})
		}
		_ = json.NewEncoder(w).Encode(rows)
	default:
		http.NotFound(w, r)
	}
}

// ---------- wiring ----------

func setup(t *testing.T, fb *fakeBooking) (*httptest.Server, *bootstrap.Deps) {
	t.Helper()
	remote := httptest.NewServer(fb)
	t.Cleanup(remote.Close)

	mr := miniredis.RunT(t)

	dir := t.TempDir()
	places := filepath.Join(dir, "places.toml")
	if err := os.WriteFile(places, []byte("[places]\nmadrid = -390625\n"), 0o600); err != nil {
		t.Fatalf("write places: %v", err)
	}

	cfg := shared.Load()
	cfg.Store = "sqlite"
	cfg.SQLitePath = filepath.Join(dir, "hotel_lookups.db")
	cfg.RedisAddr = mr.Addr()
	cfg.BookingBase = remote.URL + "/json/bookings"
	cfg.BookingUser = "user"
	cfg.BookingPass = "secret"
	cfg.BookingRPS = 100
	cfg.PlacesFile = places
	cfg.StrictFuzzy = false

	deps, err := bootstrap.Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { _ = deps.Close() })
	if deps.Cache == nil {
		t.Fatalf("expected redis cache to be wired")
	}

	srv := server.New()
	srv.MountHandlers(&server.Handlers{Local: deps.Local, Resolver: deps.Resolver, Info: deps.Info})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, deps
}

func getJSON(t *testing.T, url string, dst any) int {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if dst != nil && res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return res.StatusCode
}

// ---------- the tests ----------

func TestHTTP_EndToEnd_ResolveMadrid(t *testing.T) {
	fb := &fakeBooking{}
	for i := 1; i <= 1500; i++ {
		fb.hotels = append(fb.hotels, domain.HotelRecord{ID: int64(100000 + i), Name: fmt.Sprintf("Filler %04d", i)})
	}
	fb.hotels = append(fb.hotels,
		domain.HotelRecord{ID: 12345, Name: "Bohemian Chic Las Letras"},
		domain.HotelRecord{ID: 23456, Name: "Hotel Las Letras Gran Via"},
	)
	ts, _ := setup(t, fb)

	var m domain.Match
	if code := getJSON(t, ts.URL+"/v1/places/madrid/resolve?q=Bohemian+Chic+Las+Letras", &m); code != http.StatusOK {
		t.Fatalf("resolve status %d", code)
	}
	if m.Hotel.ID != 12345 || m.Strategy != "exact" {
		t.Fatalf("unexpected match %+v", m)
	}
	// 1502 records: a full page and a short page
	if got := fb.lists.Load(); got != 2 {
		t.Fatalf("expected 2 list requests, got %d", got)
	}

	if code := getJSON(t, ts.URL+"/v1/places/madrid/resolve?q=Letras+Gran+Via+Hotel", &m); code != http.StatusOK {
		t.Fatalf("fuzzy resolve status %d", code)
	}
	if m.Hotel.ID != 23456 || m.Strategy != "hotel-word-stripped" {
		t.Fatalf("unexpected fuzzy match %+v", m)
	}
	if got := fb.lists.Load(); got != 2 {
		t.Fatalf("populated table must not be refetched, got %d list requests", got)
	}

	if code := getJSON(t, ts.URL+"/v1/places/madrid/resolve?q=Letras+Gran+Via+Hotel&fuzzy=false", nil); code != http.StatusNotFound {
		t.Fatalf("non fuzzy miss: status %d", code)
	}
	if code := getJSON(t, ts.URL+"/v1/places/madrid/resolve?q=Letras", nil); code != http.StatusConflict {
		t.Fatalf("ambiguous exact pass: status %d", code)
	}
	if code := getJSON(t, ts.URL+"/v1/places/atlantis/resolve?q=Letras", nil); code != http.StatusNotFound {
		t.Fatalf("unknown place: status %d", code)
	}

	var rows []domain.HotelRecord
	if code := getJSON(t, ts.URL+"/v1/places/madrid/hotels", &rows); code != http.StatusOK {
		t.Fatalf("dump status %d", code)
	}
	if len(rows) != 1502 || rows[0].ID != 12345 {
		t.Fatalf("dump: %d rows, first %+v", len(rows), rows[0])
	}
}

func TestHTTP_EndToEnd_HotelInfoCachedInRedis(t *testing.T) {
	fb := &fakeBooking{hotels: []domain.HotelRecord{{ID: 12345, Name: "Bohemian Chic Las Letras"}}}
	ts, _ := setup(t, fb)

	for i := 0; i < 2; i++ {
		var info domain.HotelInfo
		if code := getJSON(t, ts.URL+"/v1/places/madrid/hotels/info?q=bohemian", &info); code != http.StatusOK {
			t.Fatalf("info status %d", code)
		}
		var details []map[string]string
		if err := json.Unmarshal(info.Details, &details); err != nil {
			t.Fatalf("details: %v", err)
		}
		if len(details) != 1 || details[0]["hotel_id"] != "12345" || details[0]["city_id"] != "-390625" {
			t.Fatalf("unexpected details %s", info.Details)
		}
	}
	if got := fb.details.Load(); got != 1 {
		t.Fatalf("second info request must be served from redis, got %d detail fetches", got)
	}
}

func TestEndToEnd_CityDiscoveryAndForcedStore(t *testing.T) {
	fb := &fakeBooking{hotels: []domain.HotelRecord{{ID: 1, Name: "Uno"}, {ID: 2, Name: "Dos"}}}
	_, deps := setup(t, fb)
	ctx := context.Background()

	id, err := deps.Registry.ResolvePlaceID(ctx, "MADR", "es")
	if err != nil || id != -390625 {
		t.Fatalf("ResolvePlaceID: %d, %v", id, err)
	}

	n, err := deps.Local.Populate(ctx, "madrid")
	if err != nil || n != 2 {
		t.Fatalf("Populate: %d, %v", n, err)
	}
	n, err = deps.Local.Populate(ctx, "madrid")
	if err != nil || n != 2 {
		t.Fatalf("second Populate: %d, %v", n, err)
	}
	rows, err := deps.Local.Dump(ctx, "madrid")
	if err != nil || len(rows) != 2 {
		t.Fatalf("Dump after upserts: %v, %v", rows, err)
	}
}

func TestEndToEnd_BadCredentialsSurfaceAsBadGateway(t *testing.T) {
	fb := &fakeBooking{hotels: []domain.HotelRecord{{ID: 1, Name: "Uno"}}}
	fb.reject.Store(true)
	ts, deps := setup(t, fb)

	if code := getJSON(t, ts.URL+"/v1/places/madrid/resolve?q=Uno", nil); code != http.StatusBadGateway {
		t.Fatalf("resolve with rejected credentials: status %d", code)
	}
	// a failed population leaves no table behind
	if code := getJSON(t, ts.URL+"/v1/places/madrid/hotels", nil); code != http.StatusNotFound {
		t.Fatalf("dump after failed population: status %d", code)
	}
	fb.reject.Store(false)
	var m domain.Match
	if code := getJSON(t, ts.URL+"/v1/places/madrid/resolve?q=Uno", &m); code != http.StatusOK || m.Hotel.ID != 1 {
		t.Fatalf("resolve after recovery: status %d, match %+v", code, m)
	}
	fb.reject.Store(true)
	_, err := deps.Registry.ResolvePlaceID(context.Background(), "madr", "es")
	var te *domain.TransportError
	if !errors.As(err, &te) || te.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 transport error from city scan, got %v", err)
	}
}

func TestHTTP_EndToEnd_InterruptedPopulationIsRefetched(t *testing.T) {
	fb := &fakeBooking{}
	for i := 1; i <= 1500; i++ {
		fb.hotels = append(fb.hotels, domain.HotelRecord{ID: int64(i), Name: fmt.Sprintf("Filler %04d", i)})
	}
	fb.hotels[1200].Name = "Bohemian Chic Las Letras"
	fb.failPage.Store(1000 + 1)
	ts, _ := setup(t, fb)

	url := ts.URL + "/v1/places/madrid/resolve?q=Bohemian+Chic"
	if code := getJSON(t, url, nil); code != http.StatusBadGateway {
		t.Fatalf("first resolve: status %d", code)
	}
	var m domain.Match
	if code := getJSON(t, url, &m); code != http.StatusOK || m.Hotel.ID != 1201 {
		t.Fatalf("second resolve: status %d, match %+v", code, m)
	}
	if got := fb.lists.Load(); got != 4 {
		t.Fatalf("expected the catalog to be listed again, got %d list requests", got)
	}
}
