package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erikbos/cinetrack/database/model"
	"github.com/erikbos/cinetrack/idhash"
)

type movieRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Duration    int       `db:"duration"`
	Year        int       `db:"year"`
	Poster      string    `db:"poster"`
	StreamURL   string    `db:"streamurl"`
	Created     time.Time `db:"created"`
}

type movieGenreRow struct {
	MovieID string `db:"movieid"`
	GenreID string `db:"id"`
	Name    string `db:"name"`
}

const movieColumns = `id, title, description, duration, year, poster, streamurl, created`

func (r movieRow) toModel() model.Movie {
	return model.Movie{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Duration:    r.Duration,
		Year:        r.Year,
		Poster:      r.Poster,
		StreamURL:   r.StreamURL,
		Created:     r.Created,
	}
}

// GetMovie returns a movie with its genres.
func (s *SqliteRepo) GetMovie(ctx context.Context, movieID string) (*model.Movie, error) {
	var row movieRow
	err := s.dbReadHandle.GetContext(ctx, &row, "SELECT "+movieColumns+" FROM movies WHERE id=? LIMIT 1", movieID)
	return s.completeMovie(ctx, row, err)
}

// GetMovieByTitle returns the oldest movie with the given title.
func (s *SqliteRepo) GetMovieByTitle(ctx context.Context, title string) (*model.Movie, error) {
	var row movieRow
	err := s.dbReadHandle.GetContext(ctx, &row,
		"SELECT "+movieColumns+" FROM movies WHERE title=? ORDER BY created ASC LIMIT 1", title)
	return s.completeMovie(ctx, row, err)
}

func (s *SqliteRepo) completeMovie(ctx context.Context, row movieRow, err error) (*model.Movie, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	var genres []movieGenreRow
	if err := s.dbReadHandle.SelectContext(ctx, &genres, `SELECT mg.movieid, g.id, g.name
		FROM movie_genres mg JOIN genres g ON g.id = mg.genreid
		WHERE mg.movieid=? ORDER BY g.name`, row.ID); err != nil {
		return nil, err
	}
	m := row.toModel()
	for _, g := range genres {
		m.Genres = append(m.Genres, model.Genre{ID: g.GenreID, Name: g.Name})
	}
	return &m, nil
}

// ListMovies returns all movies with their genres, newest first.
func (s *SqliteRepo) ListMovies(ctx context.Context) ([]model.Movie, error) {
	var rows []movieRow
	if err := s.dbReadHandle.SelectContext(ctx, &rows,
		"SELECT "+movieColumns+" FROM movies ORDER BY created DESC, id ASC"); err != nil {
		return nil, err
	}

	var genres []movieGenreRow
	if err := s.dbReadHandle.SelectContext(ctx, &genres, `SELECT mg.movieid, g.id, g.name
		FROM movie_genres mg JOIN genres g ON g.id = mg.genreid ORDER BY g.name`); err != nil {
		return nil, err
	}
	genresByMovie := make(map[string][]model.Genre)
	for _, g := range genres {
		genresByMovie[g.MovieID] = append(genresByMovie[g.MovieID], model.Genre{ID: g.GenreID, Name: g.Name})
	}

	movies := make([]model.Movie, 0, len(rows))
	for _, row := range rows {
		m := row.toModel()
		m.Genres = genresByMovie[m.ID]
		movies = append(movies, m)
	}
	return movies, nil
}

// UpsertMovie inserts or updates a movie and replaces its genre set.
// An empty ID gets a new random one and a zero Created is set to now.
func (s *SqliteRepo) UpsertMovie(ctx context.Context, movie *model.Movie) error {
	if movie.ID == "" {
		movie.ID = idhash.NewRandomID()
	}
	if movie.Created.IsZero() {
		movie.Created = s.now()
	}

	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.NamedExecContext(ctx, `INSERT INTO movies (`+movieColumns+`)
		VALUES (:id, :title, :description, :duration, :year, :poster, :streamurl, :created)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			duration = excluded.duration,
			year = excluded.year,
			poster = excluded.poster,
			streamurl = excluded.streamurl`,
		movieRow{
			ID:          movie.ID,
			Title:       movie.Title,
			Description: movie.Description,
			Duration:    movie.Duration,
			Year:        movie.Year,
			Poster:      movie.Poster,
			StreamURL:   movie.StreamURL,
			Created:     movie.Created.UTC(),
		}); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM movie_genres WHERE movieid=?`, movie.ID); err != nil {
		return err
	}
	for i := range movie.Genres {
		g, err := upsertGenre(ctx, tx, movie.Genres[i].Name)
		if err != nil {
			return err
		}
		movie.Genres[i] = *g
		if _, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO movie_genres (movieid, genreid) VALUES (?, ?)`,
			movie.ID, g.ID); err != nil {
			return err
		}
	}
	sort.Slice(movie.Genres, func(i, j int) bool {
		return movie.Genres[i].Name < movie.Genres[j].Name
	})
	return tx.Commit()
}

// DeleteMovie deletes a movie, related rows are removed by cascade.
func (s *SqliteRepo) DeleteMovie(ctx context.Context, movieID string) error {
	res, err := s.dbWriteHandle.ExecContext(ctx, `DELETE FROM movies WHERE id=?`, movieID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrMovieNotFound
	}
	return nil
}

// ListGenres returns all genres sorted by name.
func (s *SqliteRepo) ListGenres(ctx context.Context) ([]model.Genre, error) {
	var genres []model.Genre
	if err := s.dbReadHandle.SelectContext(ctx, &genres, `SELECT id, name FROM genres ORDER BY name`); err != nil {
		return nil, err
	}
	return genres, nil
}

// upsertGenre creates a genre, genre IDs are derived from the name.
func upsertGenre(ctx context.Context, tx *sqlx.Tx, name string) (*model.Genre, error) {
	if name == "" {
		return nil, model.ErrGenreNotFound
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO genres (id, name) VALUES (?, ?)`,
		idhash.Hash(name), name); err != nil {
		return nil, err
	}
	var g model.Genre
	if err := tx.GetContext(ctx, &g, `SELECT id, name FROM genres WHERE name=? LIMIT 1`, name); err != nil {
		return nil, err
	}
	return &g, nil
}
