package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/erikbos/cinetrack/database/model"
)

const ratingColumns = `userid, movieid, score, review, created, modified`

// GetRating returns the rating of a movie by a user.
func (s *SqliteRepo) GetRating(ctx context.Context, userID, movieID string) (*model.Rating, error) {
	var r model.Rating
	err := s.dbReadHandle.GetContext(ctx, &r,
		"SELECT "+ratingColumns+" FROM ratings WHERE userid=? AND movieid=? LIMIT 1", userID, movieID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRatings returns all ratings of a movie, newest first.
func (s *SqliteRepo) ListRatings(ctx context.Context, movieID string) ([]model.Rating, error) {
	var ratings []model.Rating
	if err := s.dbReadHandle.SelectContext(ctx, &ratings,
		"SELECT "+ratingColumns+" FROM ratings WHERE movieid=? ORDER BY created DESC", movieID); err != nil {
		return nil, err
	}
	return ratings, nil
}

// ListUserRatings returns all ratings given by a user, newest first.
func (s *SqliteRepo) ListUserRatings(ctx context.Context, userID string) ([]model.Rating, error) {
	var ratings []model.Rating
	if err := s.dbReadHandle.SelectContext(ctx, &ratings,
		"SELECT "+ratingColumns+" FROM ratings WHERE userid=? ORDER BY created DESC", userID); err != nil {
		return nil, err
	}
	return ratings, nil
}

// UpsertRating creates or overwrites the rating of a movie by a user.
// On overwrite the creation time is kept, the modification time is set and
// an empty review keeps the stored one.
func (s *SqliteRepo) UpsertRating(ctx context.Context, r *model.Rating) (created bool, err error) {
	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var existing model.Rating
	err = tx.GetContext(ctx, &existing,
		"SELECT "+ratingColumns+" FROM ratings WHERE userid=? AND movieid=? LIMIT 1", r.UserID, r.MovieID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = true
	case err != nil:
		return false, err
	}

	now := s.now()
	r.Modified = now
	if created {
		r.Created = now
	} else {
		r.Created = existing.Created
		if r.Review == "" {
			r.Review = existing.Review
		}
	}

	if _, err = tx.NamedExecContext(ctx, `INSERT INTO ratings (`+ratingColumns+`)
		VALUES (:userid, :movieid, :score, :review, :created, :modified)
		ON CONFLICT (userid, movieid) DO UPDATE SET
			score = excluded.score,
			review = excluded.review,
			modified = excluded.modified`,
		map[string]any{
			"userid":   r.UserID,
			"movieid":  r.MovieID,
			"score":    r.Score,
			"review":   r.Review,
			"created":  r.Created.UTC(),
			"modified": r.Modified.UTC(),
		}); err != nil {
		return false, err
	}
	return created, tx.Commit()
}

// RatingStats returns the unrounded average score and number of ratings per rated movie.
func (s *SqliteRepo) RatingStats(ctx context.Context) (map[string]model.RatingStats, error) {
	var rows []model.RatingStats
	if err := s.dbReadHandle.SelectContext(ctx, &rows,
		`SELECT movieid, AVG(score) AS average, COUNT(*) AS count FROM ratings GROUP BY movieid`); err != nil {
		return nil, err
	}
	stats := make(map[string]model.RatingStats, len(rows))
	for _, r := range rows {
		stats[r.MovieID] = r
	}
	return stats, nil
}
