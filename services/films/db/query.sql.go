package db

import (
	"context"
)

const countFilms = `-- name: CountFilms :one
select count(*) from films
`

func (q *Queries) CountFilms(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countFilms)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getAllFilms = `-- name: GetAllFilms :many
select title, year, worldwide_gross from films
order by worldwide_gross desc, title asc
`

func (q *Queries) GetAllFilms(ctx context.Context) ([]Film, error) {
	rows, err := q.db.QueryContext(ctx, getAllFilms)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Film
	for rows.Next() {
		var i Film
		if err := rows.Scan(&i.Title, &i.Year, &i.WorldwideGross); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getFilm = `-- name: GetFilm :one
select title, year, worldwide_gross from films
where title = ?
`

func (q *Queries) GetFilm(ctx context.Context, title string) (Film, error) {
	row := q.db.QueryRowContext(ctx, getFilm, title)
	var i Film
	err := row.Scan(&i.Title, &i.Year, &i.WorldwideGross)
	return i, err
}

const getFilmsByYear = `-- name: GetFilmsByYear :many
select title, year, worldwide_gross from films
where year = ?
order by worldwide_gross desc, title asc
`

func (q *Queries) GetFilmsByYear(ctx context.Context, year string) ([]Film, error) {
	rows, err := q.db.QueryContext(ctx, getFilmsByYear, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Film
	for rows.Next() {
		var i Film
		if err := rows.Scan(&i.Title, &i.Year, &i.WorldwideGross); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertFilm = `-- name: UpsertFilm :exec
insert into films(title, year, worldwide_gross) values (?, ?, ?)
on conflict(title) do update set
    year = excluded.year,
    worldwide_gross = excluded.worldwide_gross
`

type UpsertFilmParams struct {
	Title          string
	Year           string
	WorldwideGross float64
}

func (q *Queries) UpsertFilm(ctx context.Context, arg UpsertFilmParams) error {
	_, err := q.db.ExecContext(ctx, upsertFilm, arg.Title, arg.Year, arg.WorldwideGross)
	return err
}
