package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/erikbos/cinetrack/database/model"
)

// GetFavorite returns a favorite of a user.
func (s *SqliteRepo) GetFavorite(ctx context.Context, userID, movieID string) (*model.Favorite, error) {
	var f model.Favorite
	err := s.dbReadHandle.GetContext(ctx, &f,
		`SELECT userid, movieid, created FROM favorites WHERE userid=? AND movieid=? LIMIT 1`, userID, movieID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFavorites returns all favorites of a user, newest first.
func (s *SqliteRepo) ListFavorites(ctx context.Context, userID string) ([]model.Favorite, error) {
	var favorites []model.Favorite
	if err := s.dbReadHandle.SelectContext(ctx, &favorites,
		`SELECT userid, movieid, created FROM favorites WHERE userid=? ORDER BY created DESC`, userID); err != nil {
		return nil, err
	}
	return favorites, nil
}

// AddFavorite stores a favorite, an existing favorite keeps its creation time.
func (s *SqliteRepo) AddFavorite(ctx context.Context, favorite *model.Favorite) error {
	if favorite.Created.IsZero() {
		favorite.Created = s.now()
	}
	_, err := s.dbWriteHandle.ExecContext(ctx,
		`INSERT INTO favorites (userid, movieid, created) VALUES (?, ?, ?)
		ON CONFLICT (userid, movieid) DO NOTHING`,
		favorite.UserID, favorite.MovieID, favorite.Created.UTC())
	return err
}

// DeleteFavorite removes a favorite.
func (s *SqliteRepo) DeleteFavorite(ctx context.Context, userID, movieID string) error {
	res, err := s.dbWriteHandle.ExecContext(ctx,
		`DELETE FROM favorites WHERE userid=? AND movieid=?`, userID, movieID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}
