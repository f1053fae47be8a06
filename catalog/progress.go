package catalog

import (
	"context"
	"fmt"

	"github.com/erikbos/cinetrack/database/model"
)

// completedPercent is the watched percentage at which a movie counts as completed.
const completedPercent = 90

// Progress is the playback state after recording a position.
type Progress struct {
	Position  int
	Percent   float64
	Completed bool
}

// RecordProgress stores the playback position of a movie for a user.
// Completed is recomputed on every call, a lower position can reset it.
// Positions beyond the movie duration are stored as is.
func (s *Service) RecordProgress(ctx context.Context, userID, movieID string, position int) (*Progress, error) {
	movie, err := s.store.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	percent := percentWatched(position, movie.Duration)
	p := &Progress{
		Position:  position,
		Percent:   roundOneDecimal(percent),
		Completed: percent >= completedPercent,
	}
	history := &model.WatchHistory{
		UserID:      userID,
		MovieID:     movieID,
		Position:    position,
		Completed:   p.Completed,
		LastWatched: s.now(),
	}
	if err := s.store.UpsertWatchHistory(ctx, history); err != nil {
		return nil, fmt.Errorf("cannot store progress: %w", err)
	}
	s.log.Debug().Str("user", userID).Str("movie", movieID).
		Int("position", position).Bool("completed", p.Completed).Msg("progress recorded")
	s.metrics.ProgressRecorded(p.Completed)
	return p, nil
}
