// Package catalog implements movie suggestions, favorites and watch history dashboards,
// playback progress tracking and ratings on top of the data store.
package catalog

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/erikbos/cinetrack/database/model"
	"github.com/erikbos/cinetrack/metrics"
)

// Store is the subset of the data store used by the catalog.
type Store interface {
	GetUserByID(ctx context.Context, userID string) (*model.User, error)

	GetMovie(ctx context.Context, movieID string) (*model.Movie, error)
	ListMovies(ctx context.Context) ([]model.Movie, error)
	ListGenres(ctx context.Context) ([]model.Genre, error)

	GetFavorite(ctx context.Context, userID, movieID string) (*model.Favorite, error)
	ListFavorites(ctx context.Context, userID string) ([]model.Favorite, error)
	AddFavorite(ctx context.Context, favorite *model.Favorite) error
	DeleteFavorite(ctx context.Context, userID, movieID string) error

	GetWatchHistory(ctx context.Context, userID, movieID string) (*model.WatchHistory, error)
	ListWatchHistory(ctx context.Context, userID string) ([]model.WatchHistory, error)
	UpsertWatchHistory(ctx context.Context, history *model.WatchHistory) error
	MovieViewCounts(ctx context.Context) (map[string]int, error)

	GetRating(ctx context.Context, userID, movieID string) (*model.Rating, error)
	ListRatings(ctx context.Context, movieID string) ([]model.Rating, error)
	ListUserRatings(ctx context.Context, userID string) ([]model.Rating, error)
	UpsertRating(ctx context.Context, rating *model.Rating) (created bool, err error)
	RatingStats(ctx context.Context) (map[string]model.RatingStats, error)
}

// Index is a full text index over the catalog returning movie IDs.
type Index interface {
	Search(ctx context.Context, term string, size int) ([]string, error)
}

type Options struct {
	Store   Store
	Index   Index
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	// Now returns the current time, defaults to time.Now in UTC.
	Now func() time.Time
	// Rand is the random source for random suggestions, defaults to a time seeded source.
	Rand *rand.Rand
}

type Service struct {
	store   Store
	index   Index
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	// rng is not safe for concurrent use
	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(o *Options) *Service {
	s := &Service{
		store:   o.Store,
		index:   o.Index,
		log:     o.Logger.With().Str("component", "catalog").Logger(),
		metrics: o.Metrics,
		now:     o.Now,
		rng:     o.Rand,
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.rng == nil {
		seed := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return s
}

// intN returns a random number in [0,n).
func (s *Service) intN(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.IntN(n)
}

// moviesByID loads the whole catalog keyed by movie ID.
func (s *Service) moviesByID(ctx context.Context) ([]model.Movie, map[string]*model.Movie, error) {
	movies, err := s.store.ListMovies(ctx)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]*model.Movie, len(movies))
	for i := range movies {
		byID[movies[i].ID] = &movies[i]
	}
	return movies, byID, nil
}
