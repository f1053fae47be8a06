package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// GET /api/movies
//
// moviesHandler returns all movies, newest first.
func (a *API) moviesHandler(w http.ResponseWriter, r *http.Request) {
	movies, err := a.repo.ListMovies(r.Context())
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	serveJSON(makeMovies(movies), w)
}

// GET /api/movies/{movie}
//
// movieHandler returns a movie with related movies, and the favorite, progress
// and rating of the user if authenticated.
func (a *API) movieHandler(w http.ResponseWriter, r *http.Request) {
	detail, err := a.catalog.MovieDetail(r.Context(), userID(r), mux.Vars(r)["movie"])
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	serveJSON(makeMovieDetail(detail), w)
}

// GET /api/genres
func (a *API) genresHandler(w http.ResponseWriter, r *http.Request) {
	genres, err := a.repo.ListGenres(r.Context())
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	serveJSON(makeGenres(genres), w)
}

// GET /api/catalog
//
// catalogHandler returns the movies grouped per genre.
func (a *API) catalogHandler(w http.ResponseWriter, r *http.Request) {
	shelves, err := a.catalog.CatalogByGenre(r.Context())
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	response := make([]GenreShelf, 0, len(shelves))
	for _, s := range shelves {
		response = append(response, makeGenreShelf(s))
	}
	serveJSON(response, w)
}

// GET /api/featured
func (a *API) featuredHandler(w http.ResponseWriter, r *http.Request) {
	movies, err := a.catalog.Featured(r.Context())
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	serveJSON(makeMovies(movies), w)
}

// GET /api/search?q=
func (a *API) searchHandler(w http.ResponseWriter, r *http.Request) {
	movies, err := a.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	serveJSON(makeMovies(movies), w)
}

// GET /posters/{movie}?w=&h=
//
// posterHandler serves the poster of a movie, resized if w or h is set.
func (a *API) posterHandler(w http.ResponseWriter, r *http.Request) {
	if a.posters == nil {
		apierror(w, r, "not found", http.StatusNotFound)
		return
	}
	width, ok := dimension(r, "w")
	if !ok {
		apierror(w, r, "invalid width", http.StatusBadRequest)
		return
	}
	height, ok := dimension(r, "h")
	if !ok {
		apierror(w, r, "invalid height", http.StatusBadRequest)
		return
	}

	movie, err := a.repo.GetMovie(r.Context(), mux.Vars(r)["movie"])
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	if movie.Poster == "" {
		apierror(w, r, "movie has no poster", http.StatusNotFound)
		return
	}

	img, err := a.posters.Open(movie.Poster, width, height)
	if err != nil {
		a.serveError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "max-age=86400")
	if img.Path != "" {
		http.ServeFile(w, r, img.Path)
		return
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	_, _ = w.Write(img.Data)
}

// dimension parses an optional non-negative integer query parameter.
func dimension(r *http.Request, name string) (int, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0, true
	}
	v, err := strconv.Atoi(value)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
