// Package catalogfile imports movies and genres from a YAML or JSON catalog file.
// Entries can reference a Kodi style .nfo file that fills in missing fields.
package catalogfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/erikbos/cinetrack/database/model"
)

// File is the catalog file layout.
type File struct {
	Movies []Entry `json:"movies" yaml:"movies" validate:"dive"`
}

// Entry is one movie in the catalog file.
type Entry struct {
	Title       string `json:"title" yaml:"title" validate:"required,max=200"`
	Description string `json:"description" yaml:"description"`
	// Duration in seconds.
	Duration  int      `json:"duration" yaml:"duration" validate:"gt=0"`
	Year      int      `json:"year" yaml:"year" validate:"omitempty,min=1888,max=2100"`
	Poster    string   `json:"poster" yaml:"poster"`
	StreamURL string   `json:"stream_url" yaml:"stream_url" validate:"required,url"`
	Genres    []string `json:"genres" yaml:"genres" validate:"dive,required,max=100"`
	// Nfo is an optional .nfo file, relative to the catalog file.
	Nfo string `json:"nfo" yaml:"nfo"`
}

// Store is the part of the data store the importer writes to.
type Store interface {
	GetMovieByTitle(ctx context.Context, title string) (*model.Movie, error)
	UpsertMovie(ctx context.Context, movie *model.Movie) error
}

// Indexer receives every stored movie so a running search index stays current.
type Indexer interface {
	Index(ctx context.Context, movie *model.Movie) error
}

// Result counts what an import did.
type Result struct {
	Added   int
	Updated int
	// Invalid counts entries that failed validation and were skipped.
	Invalid int
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a catalog file, YAML unless the extension is .json, and merges
// the .nfo files referenced by its entries.
func Load(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file %s: %w", path, err)
	}
	defer file.Close()

	f, err := Decode(file, strings.ToLower(filepath.Ext(path)) == ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog file %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range f.Movies {
		if f.Movies[i].Nfo == "" {
			continue
		}
		if err := f.Movies[i].mergeNfo(dir); err != nil {
			return nil, fmt.Errorf("failed to load nfo of catalog entry %d: %w", i, err)
		}
	}
	return f, nil
}

// Decode parses a catalog from r.
func Decode(r io.Reader, isJSON bool) (*File, error) {
	var f File
	var err error
	if isJSON {
		err = json.NewDecoder(r).Decode(&f)
	} else {
		err = yaml.NewDecoder(r).Decode(&f)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &f, nil
}

// Import stores all valid entries. Movies are matched by title, so importing
// the same file twice updates instead of duplicating. A non nil index gets
// each stored movie.
func Import(ctx context.Context, store Store, index Indexer, f *File, logger zerolog.Logger) (Result, error) {
	log := logger.With().Str("component", "catalogfile").Logger()
	var result Result
	for i, e := range f.Movies {
		if err := validate.Struct(e); err != nil {
			log.Warn().Err(err).Int("entry", i).Str("title", e.Title).Msg("skipping invalid catalog entry")
			result.Invalid++
			continue
		}

		movie := &model.Movie{}
		existing, err := store.GetMovieByTitle(ctx, e.Title)
		switch {
		case err == nil:
			movie = existing
			result.Updated++
		case errors.Is(err, model.ErrNotFound):
			result.Added++
		default:
			return result, err
		}
		movie.Title = e.Title
		movie.Description = e.Description
		movie.Duration = e.Duration
		movie.Year = e.Year
		movie.Poster = e.Poster
		movie.StreamURL = e.StreamURL
		movie.Genres = movie.Genres[:0]
		for _, name := range normalizeGenres(e.Genres) {
			movie.Genres = append(movie.Genres, model.Genre{Name: name})
		}
		if err := store.UpsertMovie(ctx, movie); err != nil {
			return result, fmt.Errorf("cannot store %q: %w", e.Title, err)
		}
		if index != nil {
			if err := index.Index(ctx, movie); err != nil {
				return result, fmt.Errorf("cannot index %q: %w", e.Title, err)
			}
		}
	}
	log.Info().Int("added", result.Added).Int("updated", result.Updated).
		Int("invalid", result.Invalid).Msg("catalog imported")
	return result, nil
}
