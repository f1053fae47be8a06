package catalog

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/erikbos/cinetrack/database/model"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	users     map[string]model.User
	movies    []model.Movie
	genres    []model.Genre
	favorites map[[2]string]model.Favorite
	history   map[[2]string]model.WatchHistory
	ratings   map[[2]string]model.Rating
	now       func() time.Time
	// failMovies makes ListMovies fail once per set count.
	failMovies int
}

var errStore = errors.New("store unavailable")

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]model.User),
		favorites: make(map[[2]string]model.Favorite),
		history:   make(map[[2]string]model.WatchHistory),
		ratings:   make(map[[2]string]model.Rating),
		now:       func() time.Time { return testNow },
	}
}

var (
	testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	action = model.Genre{ID: "g-action", Name: "Action"}
	comedy = model.Genre{ID: "g-comedy", Name: "Comedy"}
	drama  = model.Genre{ID: "g-drama", Name: "Drama"}
	horror = model.Genre{ID: "g-horror", Name: "Horror"}
)

func (m *memStore) addMovie(id, title string, duration int, created time.Time, genres ...model.Genre) model.Movie {
	movie := model.Movie{ID: id, Title: title, Duration: duration, Created: created, Genres: genres}
	m.movies = append(m.movies, movie)
	for _, g := range genres {
		known := false
		for _, k := range m.genres {
			if k == g {
				known = true
			}
		}
		if !known {
			m.genres = append(m.genres, g)
		}
	}
	return movie
}

func (m *memStore) rate(userID, movieID string, score int) {
	m.ratings[[2]string{userID, movieID}] = model.Rating{UserID: userID, MovieID: movieID, Score: score}
}

func (m *memStore) watch(userID, movieID string, position int, completed bool, at time.Time) {
	m.history[[2]string{userID, movieID}] = model.WatchHistory{
		UserID: userID, MovieID: movieID, Position: position, Completed: completed, LastWatched: at,
	}
}

func (m *memStore) favorite(userID, movieID string, at time.Time) {
	m.favorites[[2]string{userID, movieID}] = model.Favorite{UserID: userID, MovieID: movieID, Created: at}
}

func (m *memStore) GetUserByID(_ context.Context, userID string) (*model.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &u, nil
}

func (m *memStore) GetMovie(_ context.Context, movieID string) (*model.Movie, error) {
	for _, movie := range m.movies {
		if movie.ID == movieID {
			return &movie, nil
		}
	}
	return nil, model.ErrMovieNotFound
}

func (m *memStore) ListMovies(context.Context) ([]model.Movie, error) {
	if m.failMovies > 0 {
		m.failMovies--
		return nil, errStore
	}
	movies := append([]model.Movie{}, m.movies...)
	sort.SliceStable(movies, func(i, j int) bool { return movies[i].Created.After(movies[j].Created) })
	return movies, nil
}

func (m *memStore) ListGenres(context.Context) ([]model.Genre, error) {
	genres := append([]model.Genre{}, m.genres...)
	sort.Slice(genres, func(i, j int) bool { return genres[i].Name < genres[j].Name })
	return genres, nil
}

func (m *memStore) GetFavorite(_ context.Context, userID, movieID string) (*model.Favorite, error) {
	f, ok := m.favorites[[2]string{userID, movieID}]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &f, nil
}

func (m *memStore) ListFavorites(_ context.Context, userID string) ([]model.Favorite, error) {
	var result []model.Favorite
	for _, f := range m.favorites {
		if f.UserID == userID {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Created.Equal(result[j].Created) {
			return result[i].Created.After(result[j].Created)
		}
		return result[i].MovieID < result[j].MovieID
	})
	return result, nil
}

func (m *memStore) AddFavorite(_ context.Context, f *model.Favorite) error {
	key := [2]string{f.UserID, f.MovieID}
	if _, ok := m.favorites[key]; !ok {
		m.favorites[key] = *f
	}
	return nil
}

func (m *memStore) DeleteFavorite(_ context.Context, userID, movieID string) error {
	key := [2]string{userID, movieID}
	if _, ok := m.favorites[key]; !ok {
		return model.ErrNotFound
	}
	delete(m.favorites, key)
	return nil
}

func (m *memStore) GetWatchHistory(_ context.Context, userID, movieID string) (*model.WatchHistory, error) {
	h, ok := m.history[[2]string{userID, movieID}]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &h, nil
}

func (m *memStore) ListWatchHistory(_ context.Context, userID string) ([]model.WatchHistory, error) {
	var result []model.WatchHistory
	for _, h := range m.history {
		if h.UserID == userID {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MovieID < result[j].MovieID })
	return result, nil
}

func (m *memStore) UpsertWatchHistory(_ context.Context, h *model.WatchHistory) error {
	m.history[[2]string{h.UserID, h.MovieID}] = *h
	return nil
}

func (m *memStore) MovieViewCounts(context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, h := range m.history {
		counts[h.MovieID]++
	}
	return counts, nil
}

func (m *memStore) GetRating(_ context.Context, userID, movieID string) (*model.Rating, error) {
	r, ok := m.ratings[[2]string{userID, movieID}]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) ListRatings(_ context.Context, movieID string) ([]model.Rating, error) {
	var result []model.Rating
	for _, r := range m.ratings {
		if r.MovieID == movieID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *memStore) ListUserRatings(_ context.Context, userID string) ([]model.Rating, error) {
	var result []model.Rating
	for _, r := range m.ratings {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *memStore) UpsertRating(_ context.Context, r *model.Rating) (bool, error) {
	key := [2]string{r.UserID, r.MovieID}
	existing, ok := m.ratings[key]
	r.Modified = m.now()
	if ok {
		r.Created = existing.Created
		if r.Review == "" {
			r.Review = existing.Review
		}
	} else {
		r.Created = r.Modified
	}
	m.ratings[key] = *r
	return !ok, nil
}

func (m *memStore) RatingStats(context.Context) (map[string]model.RatingStats, error) {
	sums := make(map[string]int)
	stats := make(map[string]model.RatingStats)
	for _, r := range m.ratings {
		s := stats[r.MovieID]
		s.MovieID = r.MovieID
		s.Count++
		sums[r.MovieID] += r.Score
		s.Average = float64(sums[r.MovieID]) / float64(s.Count)
		stats[r.MovieID] = s
	}
	return stats, nil
}

// fakeIndex returns the configured IDs for any term.
type fakeIndex struct {
	ids   []string
	terms []string
}

func (f *fakeIndex) Search(_ context.Context, term string, size int) ([]string, error) {
	f.terms = append(f.terms, term)
	if len(f.ids) > size {
		return f.ids[:size], nil
	}
	return f.ids, nil
}

func newTestService(t *testing.T, store *memStore) *Service {
	t.Helper()
	return New(&Options{
		Store:  store,
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return testNow },
		Rand:   rand.New(rand.NewPCG(1, 2)),
	})
}

func day(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}
