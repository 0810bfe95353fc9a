package films

import (
	"animfilms-backend/lib/textutil"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"
)

// minimum jaro-winkler similarity for a title to be suggested on a miss
const suggestionSimilarity = 0.85

// StatusSource exposes the outcome of the last refresh, *Daemon implements it.
type StatusSource interface {
	LastStatus() (Status, bool)
}

// Server is the read side of the snapshot over http.
type Server struct {
	store  Store
	status StatusSource
	policy *bluemonday.Policy
}

// NewServer creates a Server, status can be nil.
func NewServer(store Store, status StatusSource) Server {
	return Server{
		store:  store,
		status: status,
		policy: bluemonday.StrictPolicy(),
	}
}

type errorResponse struct {
	Error      string `json:"error"`
	Year       *int   `json:"year,omitempty"`
	Title      string `json:"title,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJson(ctx context.Context, w http.ResponseWriter, status int, value any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		slog.WarnContext(ctx, "failed to write response", "err", err)
	}
}

func writeInternalError(ctx context.Context, w http.ResponseWriter, err error) {
	slog.ErrorContext(ctx, "failed to serve request", "err", err)
	writeJson(ctx, w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.DebugContext(
			r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Handler returns the router of every endpoint.
func (s Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logRequests)

	r.Get("/", s.handleHome)
	r.Get("/films", s.handleFilms)
	r.Get("/films/{key}", s.handleFilm)
	r.Get("/search", s.handleSearch)
	r.Get("/status", s.handleStatus)
	return r
}

const homePage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>Animated Films</title></head>
<body>
<h1>Hi! This is the Animated Films Website</h1>
<p>Visit <a href="/films">/films</a> to see all films.</p>
<h2>Filter Films</h2>
<p>Use the button below to filter films by year:</p>
<form action="/films/2020" method="get">
	<button type="submit">Filter by 2020</button>
</form>
<h2>Search Films</h2>
<p>Are you looking for a specific film? Search here:</p>
<form action="/search" method="get">
	<input type="text" name="q" placeholder="Search by Title">
	<button type="submit">Search</button>
</form>
</body>
</html>
`

func (s Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	_, err := w.Write([]byte(homePage))
	if err != nil {
		slog.WarnContext(r.Context(), "failed to write response", "err", err)
	}
}

func (s Server) handleFilms(w http.ResponseWriter, r *http.Request) {
	films, err := s.store.FindAll(r.Context())
	if err != nil {
		writeInternalError(r.Context(), w, err)
		return
	}
	if films == nil {
		films = []Film{}
	}
	writeJson(r.Context(), w, http.StatusOK, films)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s Server) handleFilm(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if isDigits(key) {
		year, err := strconv.Atoi(key)
		if err == nil {
			s.filmsOfYear(w, r, year)
			return
		}
	}

	title, err := url.PathUnescape(key)
	if err != nil {
		title = key
	}
	s.filmByTitle(w, r, title)
}

func (s Server) filmsOfYear(w http.ResponseWriter, r *http.Request, year int) {
	films, err := s.store.FindByYear(r.Context(), strconv.Itoa(year))
	if err != nil {
		writeInternalError(r.Context(), w, err)
		return
	}
	if len(films) == 0 {
		writeJson(r.Context(), w, http.StatusNotFound, errorResponse{
			Error: fmt.Sprintf("No films found for this year %d", year),
			Year:  &year,
		})
		return
	}
	writeJson(r.Context(), w, http.StatusOK, films)
}

func (s Server) suggest(ctx context.Context, title string) string {
	films, err := s.store.FindAll(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to list films for a suggestion", "err", err)
		return ""
	}
	titles := make([]string, len(films))
	for i, f := range films {
		titles[i] = f.Title
	}
	return textutil.ClosestMatch(title, titles, suggestionSimilarity)
}

func (s Server) filmByTitle(w http.ResponseWriter, r *http.Request, title string) {
	film, err := s.store.FindByTitle(r.Context(), title)
	if errors.Is(err, ErrFilmNotFound) {
		writeJson(r.Context(), w, http.StatusNotFound, errorResponse{
			Error:      "Film not found in our list",
			Title:      s.policy.Sanitize(title),
			Suggestion: s.suggest(r.Context(), title),
		})
		return
	}
	if err != nil {
		writeInternalError(r.Context(), w, err)
		return
	}
	writeJson(r.Context(), w, http.StatusOK, film)
}

func (s Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	films, err := s.store.SearchTitle(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeInternalError(r.Context(), w, err)
		return
	}
	if films == nil {
		films = []Film{}
	}
	writeJson(r.Context(), w, http.StatusOK, films)
}

type statusResponse struct {
	Refreshed bool    `json:"refreshed"`
	Last      *Status `json:"last,omitempty"`
}

func (s Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.status == nil {
		writeJson(r.Context(), w, http.StatusOK, statusResponse{})
		return
	}
	status, ok := s.status.LastStatus()
	if !ok {
		writeJson(r.Context(), w, http.StatusOK, statusResponse{})
		return
	}
	writeJson(r.Context(), w, http.StatusOK, statusResponse{
		Refreshed: true,
		Last:      &status,
	})
}
