// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_lookup/internal/app"
	"hotel_lookup/internal/domain"
)

type Handlers struct {
	Local    *app.LocalCache
	Resolver *app.Resolver
	Info     *app.InfoService
}

type problem struct {
	Type       string               `json:"type"`
	Title      string               `json:"title"`
	Status     int                  `json:"status"`
	Detail     string               `json:"detail,omitempty"`
	Candidates []domain.HotelRecord `json:"candidates,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1/places/{place}", func(r chi.Router) {
		r.Get("/hotels", h.dump)
		r.Get("/hotels/info", h.info)
		r.Get("/resolve", h.resolve)
	})
}

func writeProblem(w http.ResponseWriter, p problem) {
	p.Type = "about:blank"
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeErr maps engine errors onto problem responses.
func writeErr(w http.ResponseWriter, err error) {
	var amb *domain.AmbiguousError
	var te *domain.TransportError
	switch {
	case errors.As(err, &amb):
		writeProblem(w, problem{Title: "Ambiguous", Status: http.StatusConflict, Detail: "more than one hotel matches, use a more specific name", Candidates: amb.Candidates})
	case errors.Is(err, domain.ErrUnknownPlace):
		writeProblem(w, problem{Title: "Unknown Place", Status: http.StatusNotFound, Detail: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, problem{Title: "Not Found", Status: http.StatusNotFound, Detail: "hotel not found"})
	case errors.Is(err, domain.ErrTableNotFound):
		writeProblem(w, problem{Title: "Not Cached", Status: http.StatusNotFound, Detail: "no hotel lookups stored for this place yet"})
	case errors.As(err, &te):
		log.Error().Err(err).Msg("catalog request failed")
		writeProblem(w, problem{Title: "Bad Gateway", Status: http.StatusBadGateway, Detail: "hotel catalog unavailable"})
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, problem{Title: "Internal Server Error", Status: http.StatusInternalServerError})
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

// query reads ?q= and ?fuzzy= (fuzzy defaults to on).
func query(w http.ResponseWriter, r *http.Request) (domain.Query, bool) {
	q := domain.Query{Place: chi.URLParam(r, "place"), Fuzzy: true}
	q.Text = strings.TrimSpace(r.URL.Query().Get("q"))
	if q.Text == "" {
		writeProblem(w, problem{Title: "Invalid query", Status: http.StatusBadRequest, Detail: "q is required"})
		return q, false
	}
	if fs := r.URL.Query().Get("fuzzy"); fs != "" {
		b, err := strconv.ParseBool(fs)
		if err != nil {
			writeProblem(w, problem{Title: "Invalid fuzzy", Status: http.StatusBadRequest, Detail: "fuzzy must be a boolean"})
			return q, false
		}
		q.Fuzzy = b
	}
	return q, true
}

func (h *Handlers) dump(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Local.Dump(r.Context(), chi.URLParam(r, "place"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if rows == nil {
		rows = []domain.HotelRecord{}
	}
	writeJSON(w, r, rows)
}

func (h *Handlers) resolve(w http.ResponseWriter, r *http.Request) {
	q, ok := query(w, r)
	if !ok {
		return
	}
	m, err := h.Resolver.Resolve(r.Context(), q)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, r, m)
}

func (h *Handlers) info(w http.ResponseWriter, r *http.Request) {
	q, ok := query(w, r)
	if !ok {
		return
	}
	info, err := h.Info.HotelInfo(r.Context(), q)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, r, info)
}
