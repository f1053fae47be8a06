package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/erikbos/cinetrack/database/model"
)

const watchHistoryColumns = `userid, movieid, position, completed, lastwatched`

// GetWatchHistory returns the playback state of a movie for a user.
func (s *SqliteRepo) GetWatchHistory(ctx context.Context, userID, movieID string) (*model.WatchHistory, error) {
	var h model.WatchHistory
	err := s.dbReadHandle.GetContext(ctx, &h,
		"SELECT "+watchHistoryColumns+" FROM watchhistory WHERE userid=? AND movieid=? LIMIT 1", userID, movieID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// ListWatchHistory returns all playback state of a user, most recently watched first.
func (s *SqliteRepo) ListWatchHistory(ctx context.Context, userID string) ([]model.WatchHistory, error) {
	var history []model.WatchHistory
	if err := s.dbReadHandle.SelectContext(ctx, &history,
		"SELECT "+watchHistoryColumns+" FROM watchhistory WHERE userid=? ORDER BY lastwatched DESC, movieid ASC",
		userID); err != nil {
		return nil, err
	}
	return history, nil
}

// UpsertWatchHistory creates or overwrites the playback state of a movie for a user.
func (s *SqliteRepo) UpsertWatchHistory(ctx context.Context, h *model.WatchHistory) error {
	if h.LastWatched.IsZero() {
		h.LastWatched = s.now()
	}
	_, err := s.dbWriteHandle.NamedExecContext(ctx, `INSERT INTO watchhistory (`+watchHistoryColumns+`)
		VALUES (:userid, :movieid, :position, :completed, :lastwatched)
		ON CONFLICT (userid, movieid) DO UPDATE SET
			position = excluded.position,
			completed = excluded.completed,
			lastwatched = excluded.lastwatched`,
		map[string]any{
			"userid":      h.UserID,
			"movieid":     h.MovieID,
			"position":    h.Position,
			"completed":   h.Completed,
			"lastwatched": h.LastWatched.UTC(),
		})
	return err
}

// MovieViewCounts returns the number of watch history rows per movie across all users.
func (s *SqliteRepo) MovieViewCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		MovieID string `db:"movieid"`
		Views   int    `db:"views"`
	}
	if err := s.dbReadHandle.SelectContext(ctx, &rows,
		`SELECT movieid, COUNT(*) AS views FROM watchhistory GROUP BY movieid`); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.MovieID] = r.Views
	}
	return counts, nil
}
