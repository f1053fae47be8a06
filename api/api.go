// Package api implements the JSON HTTP API of cinetrack.
package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/erikbos/cinetrack/catalog"
	"github.com/erikbos/cinetrack/database"
	"github.com/erikbos/cinetrack/metrics"
	"github.com/erikbos/cinetrack/muxnormalizer"
	"github.com/erikbos/cinetrack/poster"
)

type Options struct {
	Repo    database.Repository
	Catalog *catalog.Service
	// Posters serves poster images, /posters returns 404 if nil.
	Posters *poster.Resizer
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
	// AutoRegister creates unknown users on first login.
	AutoRegister bool
	// CORSOrigins lists origins allowed to call the API, empty disables CORS headers.
	CORSOrigins []string
}

type API struct {
	repo         database.Repository
	catalog      *catalog.Service
	posters      *poster.Resizer
	metrics      *metrics.Metrics
	log          zerolog.Logger
	autoRegister bool
	corsOrigins  []string
}

func New(o *Options) *API {
	return &API{
		repo:         o.Repo,
		catalog:      o.Catalog,
		posters:      o.Posters,
		metrics:      o.Metrics,
		log:          o.Logger.With().Str("component", "api").Logger(),
		autoRegister: o.AutoRegister,
		corsOrigins:  o.CORSOrigins,
	}
}

// RegisterHandlers adds all API routes to r.
func (a *API) RegisterHandlers(r *mux.Router) {
	auth := func(h http.HandlerFunc) http.Handler {
		return a.authmiddleware(h, true)
	}
	optionalAuth := func(h http.HandlerFunc) http.Handler {
		return a.authmiddleware(h, false)
	}

	r.HandleFunc("/health", a.healthHandler).Methods("GET")
	if a.metrics != nil {
		r.Handle("/metrics", a.metrics.Handler()).Methods("GET")
	}
	r.HandleFunc("/posters/{movie}", a.posterHandler).Methods("GET")

	s := r.PathPrefix("/api").Subrouter()
	s.HandleFunc("/users/login", a.loginHandler).Methods("POST")

	s.Handle("/movies", optionalAuth(a.moviesHandler)).Methods("GET")
	s.Handle("/movies/{movie}", optionalAuth(a.movieHandler)).Methods("GET")
	s.Handle("/movies/{movie}/favorite", auth(a.favoriteHandler)).Methods("POST")
	s.Handle("/movies/{movie}/progress", auth(a.progressHandler)).Methods("POST")
	s.Handle("/movies/{movie}/rating", auth(a.ratingHandler)).Methods("POST")
	s.Handle("/genres", optionalAuth(a.genresHandler)).Methods("GET")
	s.Handle("/catalog", optionalAuth(a.catalogHandler)).Methods("GET")
	s.Handle("/featured", optionalAuth(a.featuredHandler)).Methods("GET")
	s.Handle("/search", optionalAuth(a.searchHandler)).Methods("GET")

	s.Handle("/me/home", auth(a.homeHandler)).Methods("GET")
	s.Handle("/me/suggestion", auth(a.suggestionHandler)).Methods("GET")
	s.Handle("/me/favorites", auth(a.favoritesHandler)).Methods("GET")
	s.Handle("/me/favorites/stats", auth(a.favoritesStatsHandler)).Methods("GET")
	s.Handle("/me/continue", auth(a.continueHandler)).Methods("GET")
	s.Handle("/me/profile", auth(a.profileHandler)).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apierror(w, r, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apierror(w, r, "method not allowed", http.StatusMethodNotAllowed)
	})
}

// Handler returns the complete API handler: routes wrapped in path normalization,
// access logging, CORS and compression.
func (a *API) Handler() (http.Handler, error) {
	r := mux.NewRouter()
	a.RegisterHandlers(r)

	normalizer, err := muxnormalizer.New(r)
	if err != nil {
		return nil, err
	}

	var h http.Handler = handlers.CompressHandler(r)
	if len(a.corsOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(a.corsOrigins),
			handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Auth-Token", requestIDHeader}),
			handlers.ExposedHeaders([]string{requestIDHeader}),
		)(h)
	}
	h = a.httpLog(r, h)
	return normalizer.Middleware(h), nil
}

// GET /health
func (a *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	serveJSON(map[string]string{"status": "ok"}, w)
}
