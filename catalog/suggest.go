package catalog

import (
	"context"
	"sort"

	"github.com/erikbos/cinetrack/database/model"
)

// Strategy names which step of the suggestion chain produced the movie.
const (
	StrategyGenre   = "genre"
	StrategyPopular = "popular"
	StrategyRandom  = "random"
	StrategyNone    = "none"
)

// Suggest returns one movie to watch next for a user, or nil if the catalog is empty.
//
// Unseen movies in genres the user favorited (or, without favorites, watched) come first.
// Next are all unseen movies, and when everything was seen a random movie. Candidates are
// ranked by average rating, number of ratings and newest first. Suggest never fails: on
// store errors it logs and falls back to a random movie.
func (s *Service) Suggest(ctx context.Context, userID string) *model.Movie {
	movie, strategy, err := s.suggest(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user", userID).Msg("cannot compute suggestion, using random movie")
		movie, err = s.randomMovie(ctx, nil)
		strategy = StrategyRandom
		if err != nil {
			s.log.Error().Err(err).Str("user", userID).Msg("cannot select random movie")
			return nil
		}
	}
	if movie == nil {
		strategy = StrategyNone
	}
	s.metrics.SuggestionServed(strategy)
	return movie
}

func (s *Service) suggest(ctx context.Context, userID string) (*model.Movie, string, error) {
	movies, byID, err := s.moviesByID(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(movies) == 0 {
		return nil, StrategyNone, nil
	}
	favorites, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	history, err := s.store.ListWatchHistory(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	seen := make(map[string]bool, len(favorites)+len(history))
	favoriteGenres := make(map[string]bool)
	for _, f := range favorites {
		seen[f.MovieID] = true
		if m, ok := byID[f.MovieID]; ok {
			for _, g := range m.Genres {
				favoriteGenres[g.ID] = true
			}
		}
	}
	watchedGenres := make(map[string]bool)
	for _, h := range history {
		seen[h.MovieID] = true
		if m, ok := byID[h.MovieID]; ok {
			for _, g := range m.Genres {
				watchedGenres[g.ID] = true
			}
		}
	}
	genres := favoriteGenres
	if len(genres) == 0 {
		genres = watchedGenres
	}

	var inGenre, unseen []model.Movie
	for _, m := range movies {
		if seen[m.ID] {
			continue
		}
		unseen = append(unseen, m)
		for _, g := range m.Genres {
			if genres[g.ID] {
				inGenre = append(inGenre, m)
				break
			}
		}
	}

	if len(inGenre) == 0 && len(unseen) == 0 {
		movie, err := s.randomMovie(ctx, movies)
		return movie, StrategyRandom, err
	}

	stats, err := s.store.RatingStats(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(inGenre) > 0 {
		rankMovies(inGenre, stats)
		return &inGenre[0], StrategyGenre, nil
	}
	rankMovies(unseen, stats)
	return &unseen[0], StrategyPopular, nil
}

// rankMovies sorts by average rating, rating count and creation time, all descending.
// Unrated movies have average 0 and sort last.
func rankMovies(movies []model.Movie, stats map[string]model.RatingStats) {
	sort.SliceStable(movies, func(i, j int) bool {
		a, b := stats[movies[i].ID], stats[movies[j].ID]
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if !movies[i].Created.Equal(movies[j].Created) {
			return movies[i].Created.After(movies[j].Created)
		}
		return movies[i].ID < movies[j].ID
	})
}

// randomMovie picks a uniformly random movie, loading the catalog if movies is nil.
func (s *Service) randomMovie(ctx context.Context, movies []model.Movie) (*model.Movie, error) {
	if movies == nil {
		var err error
		if movies, err = s.store.ListMovies(ctx); err != nil {
			return nil, err
		}
	}
	if len(movies) == 0 {
		return nil, nil
	}
	m := movies[s.intN(len(movies))]
	return &m, nil
}
