package catalog

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/erikbos/cinetrack/database/model"
)

// SortKey orders the favorites dashboard.
type SortKey string

const (
	SortTitleAsc  SortKey = "title_asc"
	SortTitleDesc SortKey = "title_desc"
	SortDateAsc   SortKey = "date_asc"
	SortDateDesc  SortKey = "date_desc"
)

const (
	topGenresLimit        = 3
	statsGenresLimit      = 4
	continueWatchingLimit = 6
	lastWatchedLimit      = 5
	// continue watching shows movies with percent in [minPercent, maxPercent)
	continueMinPercent = 5
	continueMaxPercent = 95
)

// ParseSortKey returns the sort key for s, falling back to SortDateDesc.
// Besides the key names it accepts the field notation titulo, -titulo,
// fecha_agregado and -fecha_agregado.
func ParseSortKey(s string) SortKey {
	switch s {
	case string(SortTitleAsc), "titulo":
		return SortTitleAsc
	case string(SortTitleDesc), "-titulo":
		return SortTitleDesc
	case string(SortDateAsc), "fecha_agregado":
		return SortDateAsc
	default:
		return SortDateDesc
	}
}

// DashboardOptions filters and orders the favorites dashboard.
type DashboardOptions struct {
	// GenreID restricts the dashboard to favorites of this genre, empty for all.
	GenreID string
	Sort    SortKey
}

// FavoriteMovie is a favorited movie with the time it was favorited.
type FavoriteMovie struct {
	Movie model.Movie
	Added time.Time
}

// FavoritesDashboard summarizes the favorites of a user.
type FavoritesDashboard struct {
	Movies     []FavoriteMovie
	TotalCount int
	// TotalMinutes is the summed duration of all listed movies in whole minutes.
	TotalMinutes int
	// TopGenres holds the three most frequent genres of the listed movies.
	TopGenres []GenreCount
	// AvailableGenres holds the genres of the listed movies sorted by name.
	AvailableGenres []model.Genre
}

// FavoritesDashboard returns the favorites of a user, optionally filtered by genre.
func (s *Service) FavoritesDashboard(ctx context.Context, userID string, o DashboardOptions) (*FavoritesDashboard, error) {
	favorites, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	_, movies, err := s.moviesByID(ctx)
	if err != nil {
		return nil, err
	}

	d := &FavoritesDashboard{
		Movies: make([]FavoriteMovie, 0, len(favorites)),
	}
	totalSeconds := 0
	for _, f := range favorites {
		m, ok := movies[f.MovieID]
		if !ok {
			continue
		}
		if o.GenreID != "" && !m.HasGenre(o.GenreID) {
			continue
		}
		d.Movies = append(d.Movies, FavoriteMovie{Movie: *m, Added: f.Created})
		totalSeconds += m.Duration
	}
	sortFavorites(d.Movies, o.Sort)

	d.TotalCount = len(d.Movies)
	d.TotalMinutes = totalSeconds / 60

	top := countFavoriteGenres(d.Movies)
	for _, gc := range top {
		d.AvailableGenres = append(d.AvailableGenres, gc.Genre)
	}
	sort.Slice(d.AvailableGenres, func(i, j int) bool {
		return d.AvailableGenres[i].Name < d.AvailableGenres[j].Name
	})
	if len(top) > topGenresLimit {
		top = top[:topGenresLimit]
	}
	d.TopGenres = top
	return d, nil
}

// countFavoriteGenres counts genres of movies, most frequent first.
// Equal counts keep first-encountered order.
func countFavoriteGenres(movies []FavoriteMovie) []GenreCount {
	var order []model.Genre
	counts := make(map[model.Genre]int)
	for _, f := range movies {
		for _, g := range f.Movie.Genres {
			if counts[g] == 0 {
				order = append(order, g)
			}
			counts[g]++
		}
	}
	top := make([]GenreCount, 0, len(order))
	for _, g := range order {
		top = append(top, GenreCount{Genre: g, Count: counts[g]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})
	return top
}

// FavoritesStats is the compact favorites summary of a user.
type FavoritesStats struct {
	TotalCount int
	// TotalMinutes sums the whole minutes of each favorite.
	TotalMinutes int
	// TopGenres holds the four most frequent genres.
	TopGenres []GenreCount
}

// FavoritesStats returns count, summed minutes and top genres of all favorites of a user.
func (s *Service) FavoritesStats(ctx context.Context, userID string) (*FavoritesStats, error) {
	d, err := s.FavoritesDashboard(ctx, userID, DashboardOptions{})
	if err != nil {
		return nil, err
	}
	stats := &FavoritesStats{
		TotalCount: d.TotalCount,
		TopGenres:  countFavoriteGenres(d.Movies),
	}
	for _, f := range d.Movies {
		stats.TotalMinutes += f.Movie.Minutes()
	}
	if len(stats.TopGenres) > statsGenresLimit {
		stats.TopGenres = stats.TopGenres[:statsGenresLimit]
	}
	return stats, nil
}

func sortFavorites(f []FavoriteMovie, key SortKey) {
	var less func(i, j int) bool
	switch key {
	case SortTitleAsc:
		less = func(i, j int) bool { return f[i].Movie.Title < f[j].Movie.Title }
	case SortTitleDesc:
		less = func(i, j int) bool { return f[i].Movie.Title > f[j].Movie.Title }
	case SortDateAsc:
		less = func(i, j int) bool { return f[i].Added.Before(f[j].Added) }
	default:
		less = func(i, j int) bool { return f[i].Added.After(f[j].Added) }
	}
	sort.SliceStable(f, less)
}

// HistoryItem is a watch history row joined with its movie.
type HistoryItem struct {
	Movie model.Movie
	// Percent watched, rounded to one decimal.
	Percent     float64
	Position    int
	Completed   bool
	LastWatched time.Time
}

// ContinueWatching returns up to six unfinished movies of a user, most recently watched first.
// Only movies between 5% and 95% watched are included.
func (s *Service) ContinueWatching(ctx context.Context, userID string) ([]HistoryItem, error) {
	history, err := s.store.ListWatchHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	_, movies, err := s.moviesByID(ctx)
	if err != nil {
		return nil, err
	}
	sortHistory(history)

	items := make([]HistoryItem, 0, continueWatchingLimit)
	for _, h := range history {
		if h.Completed || h.Position <= 0 {
			continue
		}
		m, ok := movies[h.MovieID]
		if !ok {
			continue
		}
		item := newHistoryItem(h, m)
		if item.Percent < continueMinPercent || item.Percent >= continueMaxPercent {
			continue
		}
		items = append(items, item)
		if len(items) == continueWatchingLimit {
			break
		}
	}
	return items, nil
}

// ProfileSummary holds viewing statistics of a user.
type ProfileSummary struct {
	User           model.User
	DaysRegistered int
	// TotalHoursWatched sums the duration in whole hours of every watched movie.
	TotalHoursWatched int
	CompletedCount    int
	InProgressCount   int
	// MostWatchedGenre is the genre with most views across all users,
	// nil if the user has not watched anything.
	MostWatchedGenre *model.Genre
	// LastWatched holds the five most recently watched movies.
	LastWatched []HistoryItem
}

// ProfileSummary returns the viewing statistics of a user.
func (s *Service) ProfileSummary(ctx context.Context, userID string) (*ProfileSummary, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	history, err := s.store.ListWatchHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	_, movies, err := s.moviesByID(ctx)
	if err != nil {
		return nil, err
	}
	sortHistory(history)

	p := &ProfileSummary{
		User:        *user,
		LastWatched: make([]HistoryItem, 0, lastWatchedLimit),
	}
	if !user.Created.IsZero() {
		if days := int(s.now().Sub(user.Created).Hours() / 24); days > 0 {
			p.DaysRegistered = days
		}
	}
	for _, h := range history {
		if h.Completed {
			p.CompletedCount++
		} else {
			p.InProgressCount++
		}
		m, ok := movies[h.MovieID]
		if !ok {
			continue
		}
		p.TotalHoursWatched += m.Duration / 3600
		if len(p.LastWatched) < lastWatchedLimit {
			p.LastWatched = append(p.LastWatched, newHistoryItem(h, m))
		}
	}
	if len(history) > 0 {
		views, err := s.store.MovieViewCounts(ctx)
		if err != nil {
			return nil, err
		}
		if top := sortGenreCounts(genreViewTotals(views, movies)); len(top) > 0 {
			g := top[0].Genre
			p.MostWatchedGenre = &g
		}
	}
	return p, nil
}

func newHistoryItem(h model.WatchHistory, m *model.Movie) HistoryItem {
	return HistoryItem{
		Movie:       *m,
		Percent:     roundOneDecimal(percentWatched(h.Position, m.Duration)),
		Position:    h.Position,
		Completed:   h.Completed,
		LastWatched: h.LastWatched,
	}
}

// sortHistory orders by last watched descending, then movie ID.
func sortHistory(history []model.WatchHistory) {
	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].LastWatched.Equal(history[j].LastWatched) {
			return history[i].LastWatched.After(history[j].LastWatched)
		}
		return history[i].MovieID < history[j].MovieID
	})
}
