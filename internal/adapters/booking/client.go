// internal/adapters/booking/client.go
package booking

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"hotel_lookup/internal/adapters/observability"
	"hotel_lookup/internal/domain"
)

const DefaultBase = "https://distribution-xml.booking.com/json/bookings"

type Client struct {
	base string
	hc   *http.Client
	user string
	pass string
	rl   *rate.Limiter
}

// New builds a client for the distribution API. Credentials may be empty for
// callers that only read the local cache; the remote will then answer 401.
func New(base, user, pass string, rps int) *Client {
	if base == "" {
		base = DefaultBase
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "."),
		hc:   &http.Client{Timeout: 30 * time.Second},
		user: user,
		pass: pass,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// ---- Catalog operations ----

func (c *Client) ListCities(ctx context.Context, country string, offset int) ([]domain.City, error) {
	q := url.Values{}
	q.Set("countrycodes", country)
	q.Set("offset", strconv.Itoa(offset))
	var rows []map[string]any
	if err := c.fetchList(ctx, "getCities", q, &rows); err != nil {
		return nil, err
	}
	cities, err := mapCities(rows)
	if err != nil {
		return nil, &domain.TransportError{Endpoint: "getCities", Status: http.StatusOK, Err: err}
	}
	return cities, nil
}

func (c *Client) ListHotels(ctx context.Context, place domain.PlaceID, offset int) ([]domain.HotelRecord, error) {
	q := url.Values{}
	q.Set("city_ids", strconv.FormatInt(int64(place), 10))
	q.Set("fields", "hotel_id,name")
	q.Set("offset", strconv.Itoa(offset))
	var rows []map[string]any
	if err := c.fetchList(ctx, "getHotels", q, &rows); err != nil {
		return nil, err
	}
	hotels, err := mapHotels(rows)
	if err != nil {
		return nil, &domain.TransportError{Endpoint: "getHotels", Status: http.StatusOK, Err: err}
	}
	return hotels, nil
}

// HotelDetails returns the raw getHotels payload for one hotel.
func (c *Client) HotelDetails(ctx context.Context, place domain.PlaceID, hotelID int64) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("city_ids", strconv.FormatInt(int64(place), 10))
	q.Set("hotel_ids", strconv.FormatInt(hotelID, 10))
	var raw json.RawMessage
	if err := c.fetchList(ctx, "getHotels", q, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ---- Internals ----

// path builds <base>.<function>?<params>, the distribution API's URL shape.
func (c *Client) path(function string, q url.Values) string {
	p := c.base + "." + function
	if len(q) > 0 {
		p += "?" + q.Encode()
	}
	return p
}

// fetchList GETs function and decodes the body into out. Anything other than
// a JSON list is an API-level error and comes back as a *domain.TransportError.
func (c *Client) fetchList(ctx context.Context, function string, q url.Values, out any) error {
	u := c.path(function, q)
	log.Debug().Str("url", u).Msg("booking request")

	start := time.Now()
	status, body, err := c.get(ctx, u)
	observability.ObserveExternal("booking", function, status, time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domain.TransportError{Endpoint: function, Status: status, Err: err}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		var apiErr struct {
			Message string `json:"message"`
			Code    any    `json:"code"`
		}
		_ = json.Unmarshal(trimmed, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = "response is not a list"
		}
		return &domain.TransportError{Endpoint: function, Status: status, Message: msg}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return &domain.TransportError{Endpoint: function, Status: status, Err: fmt.Errorf("decode: %w", err)}
	}
	log.Debug().Str("function", function).Msg("booking request success")
	return nil
}

// get performs a GET with client-side rate limiting and retries, returning the
// final status and body. Retries on 429 and transient 5xx, honoring Retry-After.
func (c *Client) get(ctx context.Context, u string) (int, []byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return 0, nil, err
	}

	var lastErr error
	var lastStatus int
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return 0, nil, err
		}
		if c.user != "" || c.pass != "" {
			req.SetBasicAuth(c.user, c.pass)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-lookup/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return 0, nil, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return 0, nil, ctx.Err()
			}
			return 0, nil, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			b, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			return resp.StatusCode, b, err

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastStatus = resp.StatusCode
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return lastStatus, nil, ctx.Err()
			}
			return lastStatus, nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			msg := strings.TrimSpace(string(b))
			if msg == "" {
				msg = http.StatusText(resp.StatusCode)
			}
			return resp.StatusCode, nil, errors.New(msg)
		}
	}
	return lastStatus, nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
