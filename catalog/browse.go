package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/erikbos/cinetrack/database/model"
)

const (
	relatedLimit     = 8
	featuredLimit    = 6
	genreShelfLimit  = 10
	homeGenreCount   = 2
	mostViewedLimit  = 5
	searchMinLength  = 2
	searchMaxResults = 15
)

var (
	ErrSearchTermTooShort = errors.New("search term too short")
	ErrNoSearchIndex      = errors.New("search index not available")
)

// MovieDetail is a movie with the state of the requesting user and related movies.
type MovieDetail struct {
	Movie       model.Movie
	Average     float64
	RatingCount int
	IsFavorite  bool
	// Progress is nil if the user never played the movie.
	Progress *HistoryItem
	// Rating is nil if the user did not rate the movie.
	Rating  *model.Rating
	Related []model.Movie
}

// MovieDetail returns a movie with user state and up to eight related movies,
// ranked by number of shared genres and then newest first.
func (s *Service) MovieDetail(ctx context.Context, userID, movieID string) (*MovieDetail, error) {
	movie, err := s.store.GetMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.store.ListRatings(ctx, movieID)
	if err != nil {
		return nil, err
	}
	d := &MovieDetail{
		Movie:       *movie,
		Average:     averageScore(ratings),
		RatingCount: len(ratings),
	}

	if userID != "" {
		if _, err := s.store.GetFavorite(ctx, userID, movieID); err == nil {
			d.IsFavorite = true
		} else if !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		if h, err := s.store.GetWatchHistory(ctx, userID, movieID); err == nil {
			item := newHistoryItem(*h, movie)
			d.Progress = &item
		} else if !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		if r, err := s.store.GetRating(ctx, userID, movieID); err == nil {
			d.Rating = r
		} else if !errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
	}

	movies, err := s.store.ListMovies(ctx)
	if err != nil {
		return nil, err
	}
	d.Related = relatedMovies(movie, movies)
	return d, nil
}

func relatedMovies(movie *model.Movie, movies []model.Movie) []model.Movie {
	type candidate struct {
		movie  model.Movie
		shared int
	}
	var candidates []candidate
	for _, m := range movies {
		if m.ID == movie.ID {
			continue
		}
		shared := 0
		for _, g := range m.Genres {
			if movie.HasGenre(g.ID) {
				shared++
			}
		}
		if shared > 0 {
			candidates = append(candidates, candidate{movie: m, shared: shared})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].shared != candidates[j].shared {
			return candidates[i].shared > candidates[j].shared
		}
		return candidates[i].movie.Created.After(candidates[j].movie.Created)
	})
	related := make([]model.Movie, 0, relatedLimit)
	for _, c := range candidates {
		if len(related) == relatedLimit {
			break
		}
		related = append(related, c.movie)
	}
	return related
}

// GenreShelf is a genre with its movies.
type GenreShelf struct {
	Genre  model.Genre
	Movies []model.Movie
}

// CatalogByGenre returns all movies grouped by genre, genres sorted by name.
// Genres without movies are left out.
func (s *Service) CatalogByGenre(ctx context.Context) ([]GenreShelf, error) {
	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	movies, err := s.store.ListMovies(ctx)
	if err != nil {
		return nil, err
	}
	shelves := make([]GenreShelf, 0, len(genres))
	for _, g := range genres {
		if shelf := moviesOfGenre(g, movies, 0); len(shelf.Movies) > 0 {
			shelves = append(shelves, shelf)
		}
	}
	return shelves, nil
}

// moviesOfGenre returns movies carrying genre g, at most limit if limit > 0.
func moviesOfGenre(g model.Genre, movies []model.Movie, limit int) GenreShelf {
	shelf := GenreShelf{Genre: g}
	for _, m := range movies {
		if limit > 0 && len(shelf.Movies) == limit {
			break
		}
		if m.HasGenre(g.ID) {
			shelf.Movies = append(shelf.Movies, m)
		}
	}
	return shelf
}

// Featured returns up to six movies: the best rated first, filled up with the newest.
func (s *Service) Featured(ctx context.Context) ([]model.Movie, error) {
	movies, err := s.store.ListMovies(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.RatingStats(ctx)
	if err != nil {
		return nil, err
	}
	var rated []model.Movie
	for _, m := range movies {
		if stats[m.ID].Average > 0 {
			rated = append(rated, m)
		}
	}
	rankMovies(rated, stats)

	featured := make([]model.Movie, 0, featuredLimit)
	added := make(map[string]bool)
	for _, list := range [][]model.Movie{rated, movies} {
		for _, m := range list {
			if len(featured) == featuredLimit {
				return featured, nil
			}
			if !added[m.ID] {
				featured = append(featured, m)
				added[m.ID] = true
			}
		}
	}
	return featured, nil
}

// Home is the personal start page of a user.
type Home struct {
	// Suggestion is nil if the catalog is empty.
	Suggestion       *model.Movie
	ContinueWatching []HistoryItem
	// FavoriteGenres are the two genres the user watched most.
	FavoriteGenres []GenreShelf
	// MostViewed are the movies with most watch history rows across all users.
	MostViewed []model.Movie
	// PopularGenre is the genre most watched across all users, nil without any views.
	PopularGenre *GenreShelf
}

// Home returns the start page of a user.
func (s *Service) Home(ctx context.Context, userID string) (*Home, error) {
	h := &Home{
		Suggestion: s.Suggest(ctx, userID),
	}
	var err error
	if h.ContinueWatching, err = s.ContinueWatching(ctx, userID); err != nil {
		return nil, err
	}

	movies, byID, err := s.moviesByID(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.store.ListWatchHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.store.ListUserRatings(ctx, userID)
	if err != nil {
		return nil, err
	}
	averages := genreRatingAverages(ratings, byID)
	favoriteGenres := sortGenreCounts(genreViewCounts(history, byID))
	// equal view counts are ordered by the user's mean score, unrated genres last
	sort.SliceStable(favoriteGenres, func(i, j int) bool {
		a, b := favoriteGenres[i], favoriteGenres[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		avgA, ratedA := averages[a.Genre]
		avgB, ratedB := averages[b.Genre]
		if ratedA != ratedB {
			return ratedA
		}
		return avgA > avgB
	})
	for i, gc := range favoriteGenres {
		if i == homeGenreCount {
			break
		}
		h.FavoriteGenres = append(h.FavoriteGenres, moviesOfGenre(gc.Genre, movies, genreShelfLimit))
	}

	views, err := s.store.MovieViewCounts(ctx)
	if err != nil {
		return nil, err
	}
	viewed := make([]model.Movie, 0, len(views))
	for id := range views {
		if m, ok := byID[id]; ok {
			viewed = append(viewed, *m)
		}
	}
	sort.Slice(viewed, func(i, j int) bool {
		a, b := views[viewed[i].ID], views[viewed[j].ID]
		if a != b {
			return a > b
		}
		return viewed[i].ID < viewed[j].ID
	})
	if len(viewed) > mostViewedLimit {
		viewed = viewed[:mostViewedLimit]
	}
	h.MostViewed = viewed

	if top := sortGenreCounts(genreViewTotals(views, byID)); len(top) > 0 {
		shelf := moviesOfGenre(top[0].Genre, movies, genreShelfLimit)
		h.PopularGenre = &shelf
	}
	return h, nil
}

// Search returns up to fifteen movies matching term in title, description or genre.
func (s *Service) Search(ctx context.Context, term string) ([]model.Movie, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < searchMinLength {
		return nil, ErrSearchTermTooShort
	}
	if s.index == nil {
		return nil, ErrNoSearchIndex
	}
	ids, err := s.index.Search(ctx, term, searchMaxResults)
	if err != nil {
		return nil, err
	}
	movies := make([]model.Movie, 0, len(ids))
	for _, id := range ids {
		m, err := s.store.GetMovie(ctx, id)
		if errors.Is(err, model.ErrNotFound) {
			// index can be behind the store
			continue
		}
		if err != nil {
			return nil, err
		}
		movies = append(movies, *m)
	}
	return movies, nil
}
