package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoConfiguration = errors.New("database filename not set")
	ErrNoDbHandle      = errors.New("db connection not available")
	ErrNotFound        = errors.New("not found")
	ErrMovieNotFound   = fmt.Errorf("movie %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrGenreNotFound   = fmt.Errorf("genre %w", ErrNotFound)
	ErrInvalidPassword = errors.New("invalid password")
)

// User represents a user in the system.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Username is the username of the user.
	Username string
	// Password is the hashed password of the user.
	Password string
	// Created is the time the user registered.
	Created time.Time
	// LastLogin is the last time the user logged in.
	LastLogin time.Time
}

// AccessToken represents an access token for a user.
type AccessToken struct {
	// UserID is the ID of the user associated with the token.
	UserID string
	// Token is the access token string.
	Token string
	// Created is the time the token was created.
	Created time.Time
	// LastUsed is the last time the token was used.
	LastUsed time.Time
}

// Genre is a movie genre, names are unique.
type Genre struct {
	ID   string
	Name string
}

// Movie represents a movie in the catalog.
type Movie struct {
	ID          string
	Title       string
	Description string
	// Duration in seconds, always > 0 once stored.
	Duration int
	// Year of release, 0 if unknown.
	Year int
	// Poster is the poster image path relative to the poster directory.
	Poster string
	// StreamURL points to the playable stream.
	StreamURL string
	// Genres of the movie, sorted by name.
	Genres []Genre
	// Created is the time the movie was added to the catalog.
	Created time.Time
}

// Minutes returns the duration in whole minutes.
func (m *Movie) Minutes() int {
	return m.Duration / 60
}

// FormattedDuration returns the duration as h:mm:ss, or m:ss for movies shorter than an hour.
func (m *Movie) FormattedDuration() string {
	hours := m.Duration / 3600
	minutes := (m.Duration % 3600) / 60
	seconds := m.Duration % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// HasGenre returns true if the movie carries genre genreID.
func (m *Movie) HasGenre(genreID string) bool {
	for _, g := range m.Genres {
		if g.ID == genreID {
			return true
		}
	}
	return false
}

// Favorite marks a movie as favorite of a user.
type Favorite struct {
	UserID  string
	MovieID string
	Created time.Time
}

// WatchHistory is the playback state of a movie for a user.
type WatchHistory struct {
	UserID  string
	MovieID string
	// Position is the offset in seconds where playback stopped.
	Position int
	// Completed is true if at least 90% was watched at the last update.
	Completed bool
	// LastWatched is the time of the last update.
	LastWatched time.Time
}

// Rating is the score a user gave to a movie.
type Rating struct {
	UserID  string
	MovieID string
	// Score between 1 and 5.
	Score int
	// Review is optional, at most 500 characters.
	Review   string
	Created  time.Time
	Modified time.Time
}

// RatingStats holds the aggregated ratings of a movie.
type RatingStats struct {
	MovieID string
	// Average is the unrounded mean score, 0 without ratings.
	Average float64
	Count   int
}
