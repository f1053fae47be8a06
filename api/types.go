package api

import (
	"time"

	"github.com/erikbos/cinetrack/catalog"
	"github.com/erikbos/cinetrack/database/model"
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Created   time.Time `json:"created"`
	LastLogin time.Time `json:"last_login"`
}

type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Movie struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	Duration          int       `json:"duration"`
	DurationFormatted string    `json:"duration_formatted"`
	Minutes           int       `json:"minutes"`
	Year              int       `json:"year,omitempty"`
	PosterURL         string    `json:"poster_url,omitempty"`
	StreamURL         string    `json:"stream_url"`
	Genres            []Genre   `json:"genres"`
	Created           time.Time `json:"created"`
}

type Rating struct {
	Score    int       `json:"score"`
	Review   string    `json:"review,omitempty"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

type HistoryItem struct {
	Movie       Movie     `json:"movie"`
	Percent     float64   `json:"percent"`
	Position    int       `json:"position"`
	Completed   bool      `json:"completed"`
	LastWatched time.Time `json:"last_watched"`
}

type MovieDetail struct {
	Movie
	Average     float64      `json:"average"`
	RatingCount int          `json:"rating_count"`
	IsFavorite  bool         `json:"is_favorite"`
	Progress    *HistoryItem `json:"progress,omitempty"`
	Rating      *Rating      `json:"rating,omitempty"`
	Related     []Movie      `json:"related"`
}

type GenreShelf struct {
	Genre  Genre   `json:"genre"`
	Movies []Movie `json:"movies"`
}

type GenreCount struct {
	Genre Genre `json:"genre"`
	Count int   `json:"count"`
}

type FavoriteMovie struct {
	Movie
	Added time.Time `json:"added"`
}

type FavoritesDashboard struct {
	Movies          []FavoriteMovie `json:"movies"`
	TotalCount      int             `json:"total_count"`
	TotalMinutes    int             `json:"total_minutes"`
	TopGenres       []GenreCount    `json:"top_genres"`
	AvailableGenres []Genre         `json:"available_genres"`
}

type FavoritesStats struct {
	TotalCount   int          `json:"total_count"`
	TotalMinutes int          `json:"total_minutes"`
	TopGenres    []GenreCount `json:"top_genres"`
}

type ProfileSummary struct {
	User              User          `json:"user"`
	DaysRegistered    int           `json:"days_registered"`
	TotalHoursWatched int           `json:"total_hours_watched"`
	CompletedCount    int           `json:"completed_count"`
	InProgressCount   int           `json:"in_progress_count"`
	MostWatchedGenre  *Genre        `json:"most_watched_genre"`
	LastWatched       []HistoryItem `json:"last_watched"`
}

type Home struct {
	Suggestion       *Movie        `json:"suggestion"`
	ContinueWatching []HistoryItem `json:"continue_watching"`
	FavoriteGenres   []GenreShelf  `json:"favorite_genres"`
	MostViewed       []Movie       `json:"most_viewed"`
	PopularGenre     *GenreShelf   `json:"popular_genre"`
}

type FavoriteResponse struct {
	IsFavorite bool `json:"is_favorite"`
	Remaining  int  `json:"remaining"`
}

type ProgressRequest struct {
	// Position is a pointer so a missing position is told apart from 0.
	Position *int `json:"position" validate:"required,min=0"`
}

type ProgressResponse struct {
	Position  int     `json:"position"`
	Percent   float64 `json:"percent"`
	Completed bool    `json:"completed"`
}

type RatingResponse struct {
	Rating  Rating  `json:"rating"`
	Created bool    `json:"created"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

func makeUser(u *model.User) User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		Created:   u.Created,
		LastLogin: u.LastLogin,
	}
}

func makeGenre(g model.Genre) Genre {
	return Genre{ID: g.ID, Name: g.Name}
}

func makeGenres(genres []model.Genre) []Genre {
	response := make([]Genre, 0, len(genres))
	for _, g := range genres {
		response = append(response, makeGenre(g))
	}
	return response
}

func makeMovie(m *model.Movie) Movie {
	response := Movie{
		ID:                m.ID,
		Title:             m.Title,
		Description:       m.Description,
		Duration:          m.Duration,
		DurationFormatted: m.FormattedDuration(),
		Minutes:           m.Minutes(),
		Year:              m.Year,
		StreamURL:         m.StreamURL,
		Genres:            makeGenres(m.Genres),
		Created:           m.Created,
	}
	if m.Poster != "" {
		response.PosterURL = "/posters/" + m.ID
	}
	return response
}

func makeMovies(movies []model.Movie) []Movie {
	response := make([]Movie, 0, len(movies))
	for i := range movies {
		response = append(response, makeMovie(&movies[i]))
	}
	return response
}

func makeRating(r *model.Rating) Rating {
	return Rating{
		Score:    r.Score,
		Review:   r.Review,
		Created:  r.Created,
		Modified: r.Modified,
	}
}

func makeHistoryItem(h catalog.HistoryItem) HistoryItem {
	return HistoryItem{
		Movie:       makeMovie(&h.Movie),
		Percent:     h.Percent,
		Position:    h.Position,
		Completed:   h.Completed,
		LastWatched: h.LastWatched,
	}
}

func makeHistoryItems(items []catalog.HistoryItem) []HistoryItem {
	response := make([]HistoryItem, 0, len(items))
	for _, h := range items {
		response = append(response, makeHistoryItem(h))
	}
	return response
}

func makeGenreShelf(s catalog.GenreShelf) GenreShelf {
	return GenreShelf{
		Genre:  makeGenre(s.Genre),
		Movies: makeMovies(s.Movies),
	}
}

func makeMovieDetail(d *catalog.MovieDetail) MovieDetail {
	response := MovieDetail{
		Movie:       makeMovie(&d.Movie),
		Average:     d.Average,
		RatingCount: d.RatingCount,
		IsFavorite:  d.IsFavorite,
		Related:     makeMovies(d.Related),
	}
	if d.Progress != nil {
		p := makeHistoryItem(*d.Progress)
		response.Progress = &p
	}
	if d.Rating != nil {
		r := makeRating(d.Rating)
		response.Rating = &r
	}
	return response
}

func makeFavoritesDashboard(d *catalog.FavoritesDashboard) FavoritesDashboard {
	response := FavoritesDashboard{
		Movies:          make([]FavoriteMovie, 0, len(d.Movies)),
		TotalCount:      d.TotalCount,
		TotalMinutes:    d.TotalMinutes,
		TopGenres:       make([]GenreCount, 0, len(d.TopGenres)),
		AvailableGenres: makeGenres(d.AvailableGenres),
	}
	for i := range d.Movies {
		response.Movies = append(response.Movies, FavoriteMovie{
			Movie: makeMovie(&d.Movies[i].Movie),
			Added: d.Movies[i].Added,
		})
	}
	for _, gc := range d.TopGenres {
		response.TopGenres = append(response.TopGenres, GenreCount{Genre: makeGenre(gc.Genre), Count: gc.Count})
	}
	return response
}

func makeFavoritesStats(st *catalog.FavoritesStats) FavoritesStats {
	response := FavoritesStats{
		TotalCount:   st.TotalCount,
		TotalMinutes: st.TotalMinutes,
		TopGenres:    make([]GenreCount, 0, len(st.TopGenres)),
	}
	for _, gc := range st.TopGenres {
		response.TopGenres = append(response.TopGenres, GenreCount{Genre: makeGenre(gc.Genre), Count: gc.Count})
	}
	return response
}

func makeProfileSummary(p *catalog.ProfileSummary) ProfileSummary {
	response := ProfileSummary{
		User:              makeUser(&p.User),
		DaysRegistered:    p.DaysRegistered,
		TotalHoursWatched: p.TotalHoursWatched,
		CompletedCount:    p.CompletedCount,
		InProgressCount:   p.InProgressCount,
		LastWatched:       makeHistoryItems(p.LastWatched),
	}
	if p.MostWatchedGenre != nil {
		g := makeGenre(*p.MostWatchedGenre)
		response.MostWatchedGenre = &g
	}
	return response
}

func makeHome(h *catalog.Home) Home {
	response := Home{
		ContinueWatching: makeHistoryItems(h.ContinueWatching),
		FavoriteGenres:   make([]GenreShelf, 0, len(h.FavoriteGenres)),
		MostViewed:       makeMovies(h.MostViewed),
	}
	if h.Suggestion != nil {
		m := makeMovie(h.Suggestion)
		response.Suggestion = &m
	}
	for _, s := range h.FavoriteGenres {
		response.FavoriteGenres = append(response.FavoriteGenres, makeGenreShelf(s))
	}
	if h.PopularGenre != nil {
		s := makeGenreShelf(*h.PopularGenre)
		response.PopularGenre = &s
	}
	return response
}
