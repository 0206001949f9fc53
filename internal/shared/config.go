package shared

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	Store      string // sqlite|mysql|memory
	SQLitePath string
	MySQLDSN   string

	RedisAddr string // empty disables the Redis cache
	RedisDB   int
	RedisPass string

	BookingBase string
	BookingUser string
	BookingPass string
	BookingRPS  int

	PlacesFile  string
	Workers     int
	ForceIngest bool
	CacheTTL    time.Duration
	StrictFuzzy bool
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	flag := func(k string) bool {
		b, _ := strconv.ParseBool(os.Getenv(k))
		return b
	}
	return Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		Store:       env("STORE", "sqlite"),
		SQLitePath:  env("SQLITE_PATH", "hotel_lookups.db"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotel_lookups?parseTime=true&charset=utf8mb4"),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		BookingBase: env("BOOKING_BASE_URL", "https://distribution-xml.booking.com/json/bookings"),
		BookingUser: env("BOOKING_USER", ""),
		BookingPass: env("BOOKING_PASS", ""),
		BookingRPS:  atoi("BOOKING_RPS", 5),
		PlacesFile:  env("PLACES_FILE", "places.toml"),
		Workers:     atoi("INGEST_WORKERS", 4),
		ForceIngest: flag("INGEST_FORCE"),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		StrictFuzzy: flag("STRICT_FUZZY"),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
