package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/erikbos/cinetrack/database/model"
)

// FavoriteState is the result of toggling a favorite.
type FavoriteState struct {
	IsFavorite bool
	// Remaining is the number of favorites the user has after the toggle.
	Remaining int
}

// ToggleFavorite adds a movie to the favorites of a user, or removes it if already present.
func (s *Service) ToggleFavorite(ctx context.Context, userID, movieID string) (*FavoriteState, error) {
	if _, err := s.store.GetMovie(ctx, movieID); err != nil {
		return nil, err
	}
	state := &FavoriteState{}
	_, err := s.store.GetFavorite(ctx, userID, movieID)
	switch {
	case err == nil:
		if err := s.store.DeleteFavorite(ctx, userID, movieID); err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("cannot remove favorite: %w", err)
		}
	case errors.Is(err, model.ErrNotFound):
		favorite := &model.Favorite{
			UserID:  userID,
			MovieID: movieID,
			Created: s.now(),
		}
		if err := s.store.AddFavorite(ctx, favorite); err != nil {
			return nil, fmt.Errorf("cannot add favorite: %w", err)
		}
		state.IsFavorite = true
	default:
		return nil, err
	}
	s.metrics.FavoriteToggled(state.IsFavorite)

	favorites, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	state.Remaining = len(favorites)
	return state, nil
}
