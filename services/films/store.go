package films

import (
	"animfilms-backend/lib/textutil"
	"animfilms-backend/services/films/db"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrFilmNotFound = errors.New("film not found")

// Store is the persisted snapshot of films, keyed by title.
type Store interface {
	// Upsert inserts film or replaces every field of the film with the same title.
	Upsert(ctx context.Context, film Film) error
	FindAll(ctx context.Context) ([]Film, error)
	FindByYear(ctx context.Context, year string) ([]Film, error)
	// SearchTitle returns the films whose title contains query, ignoring case.
	// An empty query matches every film.
	SearchTitle(ctx context.Context, query string) ([]Film, error)
	// FindByTitle returns ErrFilmNotFound if there is no film with exactly this title.
	FindByTitle(ctx context.Context, title string) (Film, error)
}

// SqlStore is a Store on top of sqlite or libsql.
type SqlStore struct {
	db  *sql.DB
	qry *db.Queries
}

func NewSqlStore(database *sql.DB) SqlStore {
	return SqlStore{
		db:  database,
		qry: db.New(database),
	}
}

func fromRow(row db.Film) Film {
	return Film{
		Title:          row.Title,
		Year:           row.Year,
		WorldwideGross: row.WorldwideGross,
	}
}

func fromRows(rows []db.Film) []Film {
	out := make([]Film, len(rows))
	for i, r := range rows {
		out[i] = fromRow(r)
	}
	return out
}

func (s SqlStore) Upsert(ctx context.Context, film Film) error {
	ctx, span := tracer.Start(ctx, "Store:Upsert")
	defer span.End()
	span.SetAttributes(attribute.String("title", film.Title))

	if strings.TrimSpace(film.Title) == "" {
		err := fmt.Errorf("upsert film: title is empty")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err := s.qry.UpsertFilm(ctx, db.UpsertFilmParams{
		Title:          film.Title,
		Year:           film.Year,
		WorldwideGross: film.WorldwideGross,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upsert film")
		return fmt.Errorf("upsert film: %w", err)
	}
	return nil
}

func (s SqlStore) FindAll(ctx context.Context) ([]Film, error) {
	rows, err := s.qry.GetAllFilms(ctx)
	if err != nil {
		return nil, fmt.Errorf("find all films: %w", err)
	}
	return fromRows(rows), nil
}

func (s SqlStore) FindByYear(ctx context.Context, year string) ([]Film, error) {
	rows, err := s.qry.GetFilmsByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("find films of %s: %w", year, err)
	}
	return fromRows(rows), nil
}

// sqlite's LIKE only folds ascii, titles are filtered here so that
// "pokémon" also finds "Pokémon".
func (s SqlStore) SearchTitle(ctx context.Context, query string) ([]Film, error) {
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("search films: %w", err)
	}
	if strings.TrimSpace(query) == "" {
		return all, nil
	}

	out := []Film{}
	for _, film := range all {
		if textutil.ContainsFold(film.Title, query) {
			out = append(out, film)
		}
	}
	return out, nil
}

func (s SqlStore) FindByTitle(ctx context.Context, title string) (Film, error) {
	row, err := s.qry.GetFilm(ctx, title)
	if errors.Is(err, sql.ErrNoRows) {
		return Film{}, ErrFilmNotFound
	}
	if err != nil {
		return Film{}, fmt.Errorf("find film %q: %w", title, err)
	}
	return fromRow(row), nil
}

// Count returns the amount of stored films.
func (s SqlStore) Count(ctx context.Context) (int64, error) {
	count, err := s.qry.CountFilms(ctx)
	if err != nil {
		return 0, fmt.Errorf("count films: %w", err)
	}
	return count, nil
}
