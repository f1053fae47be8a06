package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/erikbos/cinetrack/catalog"
)

// POST /api/movies/{movie}/favorite
//
// favoriteHandler adds the movie to the favorites of the user, or removes it.
func (a *API) favoriteHandler(w http.ResponseWriter, r *http.Request) {
	state, err := a.catalog.ToggleFavorite(r.Context(), userID(r), mux.Vars(r)["movie"])
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	serveJSON(FavoriteResponse{IsFavorite: state.IsFavorite, Remaining: state.Remaining}, w)
}

// POST /api/movies/{movie}/progress
//
// progressHandler records the playback position in seconds.
func (a *API) progressHandler(w http.ResponseWriter, r *http.Request) {
	var request ProgressRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	progress, err := a.catalog.RecordProgress(r.Context(), userID(r), mux.Vars(r)["movie"], *request.Position)
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	serveJSON(ProgressResponse{
		Position:  progress.Position,
		Percent:   progress.Percent,
		Completed: progress.Completed,
	}, w)
}

// POST /api/movies/{movie}/rating
//
// ratingHandler stores score and review of the user, replacing an earlier rating.
func (a *API) ratingHandler(w http.ResponseWriter, r *http.Request) {
	var request catalog.RatingRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	result, err := a.catalog.Rate(r.Context(), userID(r), mux.Vars(r)["movie"], request)
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	serveJSON(RatingResponse{
		Rating:  makeRating(&result.Rating),
		Created: result.Created,
		Average: result.Average,
		Count:   result.Count,
	}, w)
}

// GET /api/me/home
func (a *API) homeHandler(w http.ResponseWriter, r *http.Request) {
	home, err := a.catalog.Home(r.Context(), userID(r))
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	serveJSON(makeHome(home), w)
}

// GET /api/me/suggestion
//
// suggestionHandler returns one movie to watch next, 404 if the catalog is empty.
func (a *API) suggestionHandler(w http.ResponseWriter, r *http.Request) {
	movie := a.catalog.Suggest(r.Context(), userID(r))
	if movie == nil {
		apierror(w, r, "no movies available", http.StatusNotFound)
		return
	}
	serveJSON(makeMovie(movie), w)
}

// GET /api/me/favorites?genre=&order=
func (a *API) favoritesHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	dashboard, err := a.catalog.FavoritesDashboard(r.Context(), userID(r), catalog.DashboardOptions{
		GenreID: query.Get("genre"),
		Sort:    catalog.ParseSortKey(query.Get("order")),
	})
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	serveJSON(makeFavoritesDashboard(dashboard), w)
}

// GET /api/me/favorites/stats
func (a *API) favoritesStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := a.catalog.FavoritesStats(r.Context(), userID(r))
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	serveJSON(makeFavoritesStats(stats), w)
}

// GET /api/me/continue
func (a *API) continueHandler(w http.ResponseWriter, r *http.Request) {
	items, err := a.catalog.ContinueWatching(r.Context(), userID(r))
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	serveJSON(makeHistoryItems(items), w)
}

// GET /api/me/profile
func (a *API) profileHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := a.catalog.ProfileSummary(r.Context(), userID(r))
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	serveJSON(makeProfileSummary(profile), w)
}
