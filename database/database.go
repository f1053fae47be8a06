package database

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/erikbos/cinetrack/database/model"
	"github.com/erikbos/cinetrack/database/sqlite"
)

type (
	// Repository is the complete data store.
	Repository interface {
		UserRepo
		AccessTokenRepo
		MovieRepo
		FavoriteRepo
		WatchHistoryRepo
		RatingRepo
		StartBackgroundJobs(ctx context.Context)
		Close() error
	}

	// UserRepo defines the interface for user database operations
	UserRepo interface {
		// GetUser retrieves a user by username.
		GetUser(ctx context.Context, username string) (*model.User, error)
		// GetUserByID retrieves a user by their ID.
		GetUserByID(ctx context.Context, userID string) (*model.User, error)
		// UpsertUser inserts or replaces a user.
		UpsertUser(ctx context.Context, user *model.User) error
		// DeleteUser deletes a user together with their favorites, history and ratings.
		DeleteUser(ctx context.Context, userID string) error
	}

	AccessTokenRepo interface {
		// CreateAccessToken creates a new token for a user.
		CreateAccessToken(ctx context.Context, userID string) (string, error)
		// GetAccessToken returns token details.
		GetAccessToken(ctx context.Context, token string) (*model.AccessToken, error)
	}

	MovieRepo interface {
		// GetMovie returns a movie with its genres.
		GetMovie(ctx context.Context, movieID string) (*model.Movie, error)
		// GetMovieByTitle returns the first movie with the given title.
		GetMovieByTitle(ctx context.Context, title string) (*model.Movie, error)
		// ListMovies returns all movies with their genres, newest first.
		ListMovies(ctx context.Context) ([]model.Movie, error)
		// UpsertMovie inserts or updates a movie and replaces its genre set.
		UpsertMovie(ctx context.Context, movie *model.Movie) error
		// DeleteMovie deletes a movie together with favorites, history and ratings of it.
		DeleteMovie(ctx context.Context, movieID string) error
		// ListGenres returns all genres sorted by name.
		ListGenres(ctx context.Context) ([]model.Genre, error)
	}

	FavoriteRepo interface {
		// GetFavorite returns a favorite of a user.
		GetFavorite(ctx context.Context, userID, movieID string) (*model.Favorite, error)
		// ListFavorites returns all favorites of a user, newest first.
		ListFavorites(ctx context.Context, userID string) ([]model.Favorite, error)
		// AddFavorite stores a favorite, existing favorites are left untouched.
		AddFavorite(ctx context.Context, favorite *model.Favorite) error
		// DeleteFavorite removes a favorite.
		DeleteFavorite(ctx context.Context, userID, movieID string) error
	}

	WatchHistoryRepo interface {
		// GetWatchHistory returns playback state of a movie for a user.
		GetWatchHistory(ctx context.Context, userID, movieID string) (*model.WatchHistory, error)
		// ListWatchHistory returns all playback state of a user, most recently watched first.
		ListWatchHistory(ctx context.Context, userID string) ([]model.WatchHistory, error)
		// UpsertWatchHistory creates or overwrites playback state.
		UpsertWatchHistory(ctx context.Context, history *model.WatchHistory) error
		// MovieViewCounts returns number of history rows per movie across all users.
		MovieViewCounts(ctx context.Context) (map[string]int, error)
	}

	RatingRepo interface {
		// GetRating returns the rating of a movie by a user.
		GetRating(ctx context.Context, userID, movieID string) (*model.Rating, error)
		// ListRatings returns all ratings of a movie.
		ListRatings(ctx context.Context, movieID string) ([]model.Rating, error)
		// ListUserRatings returns all ratings given by a user.
		ListUserRatings(ctx context.Context, userID string) ([]model.Rating, error)
		// UpsertRating creates or overwrites a rating, created reports a new row.
		UpsertRating(ctx context.Context, rating *model.Rating) (created bool, err error)
		// RatingStats returns unrounded average and count per rated movie.
		RatingStats(ctx context.Context) (map[string]model.RatingStats, error)
	}
)

// Options holds configuration options.
type Options struct {
	// Filename is the sqlite database file.
	Filename string
	Logger   zerolog.Logger
}

func New(o *Options) (Repository, error) {
	if o == nil || o.Filename == "" {
		return nil, model.ErrNoConfiguration
	}
	repo, err := sqlite.New(&sqlite.ConfigFile{
		Filename: o.Filename,
	}, o.Logger)
	if err != nil {
		return nil, errors.Join(errors.New("cannot open database"), err)
	}
	return repo, nil
}
