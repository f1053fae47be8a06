// Package search is an in-memory full text index over the movie catalog.
package search

import (
	"context"
	"strings"
	"sync"

	bleve "github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/rs/zerolog"

	"github.com/erikbos/cinetrack/database/model"
)

const (
	idField          = "id"
	titleField       = "title"
	titleExactField  = "title_exact"
	descriptionField = "description"
	genresField      = "genres"
)

// Search is the Bleve-based search index.
type Search struct {
	// mu guards index, Rebuild swaps it
	mu    sync.RWMutex
	index bleve.Index
	log   zerolog.Logger
}

// Document is the document we store in Bleve per movie.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// TitleExact is helper field to make exact title match more accurate
	TitleExact  string   `json:"title_exact"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	Year        int      `json:"year"`
}

// New creates a new empty in-memory index.
func New(logger zerolog.Logger) (*Search, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Search{
		index: idx,
		log:   logger.With().Str("component", "search").Logger(),
	}, nil
}

// buildIndexMapping builds the Bleve index field mapping configuration.
func buildIndexMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	// english analyzer for tokenization and lowercasing, text is only indexed
	text := bleve.NewTextFieldMapping()
	text.Analyzer = "en"
	text.Store = false
	text.Index = true

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	keyword.Index = true

	doc.AddFieldMappingsAt(idField, keyword)
	doc.AddFieldMappingsAt(titleField, text)
	doc.AddFieldMappingsAt(titleExactField, keyword)
	doc.AddFieldMappingsAt(descriptionField, text)
	doc.AddFieldMappingsAt(genresField, text)

	m.DefaultMapping = doc
	return m
}

// NewDocument converts a movie into an index document.
func NewDocument(m *model.Movie) Document {
	doc := Document{
		ID:          m.ID,
		Title:       m.Title,
		TitleExact:  strings.ToLower(m.Title),
		Description: m.Description,
		Year:        m.Year,
	}
	for _, g := range m.Genres {
		doc.Genres = append(doc.Genres, g.Name)
	}
	return doc
}

// Index indexes or updates a single movie.
func (b *Search) Index(ctx context.Context, m *model.Movie) error {
	doc := NewDocument(m)
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.index.Index(doc.ID, doc)
}

// Rebuild replaces the index contents with movies.
func (b *Search) Rebuild(ctx context.Context, movies []model.Movie) error {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return err
	}
	if err := indexBatch(idx, movies); err != nil {
		idx.Close()
		return err
	}

	b.mu.Lock()
	old := b.index
	b.index = idx
	b.mu.Unlock()

	b.log.Info().Int("movies", len(movies)).Msg("search index rebuilt")
	return old.Close()
}

// indexBatch indexes movies in batches.
func indexBatch(idx bleve.Index, movies []model.Movie) error {
	batch := idx.NewBatch()
	for i := range movies {
		d := NewDocument(&movies[i])
		if err := batch.Index(d.ID, d); err != nil {
			return err
		}
		// commit in big batches to avoid huge memory usage
		if batch.Size() > 1000 {
			if err := idx.Batch(batch); err != nil {
				return err
			}
			batch = idx.NewBatch()
		}
	}
	if batch.Size() > 0 {
		return idx.Batch(batch)
	}
	return nil
}

// Search runs a fuzzy search across title, description and genres
// and returns up to size movie IDs, best match first.
func (b *Search) Search(ctx context.Context, searchTerm string, size int) ([]string, error) {
	searchTerm = strings.ToLower(strings.TrimSpace(searchTerm))
	if searchTerm == "" {
		return nil, nil
	}

	// Weights for boosting certain query types and fields.
	const (
		boostTitleExact       = 50.0 // exact match on title_exact field
		boostTitlePhrase      = 12.0 // exact phrase in title
		boostTitlePrefix      = 6.0  // prefix on whole query against title
		boostTitleTokenPrefix = 5.0  // prefix on first token against title
		boostTitleField       = 3.0  // fuzzy/prefix on title tokens
		boostGenre            = 2.0
		boostOtherFields      = 1.0
	)

	boolQuery := bleve.NewBooleanQuery()

	termExact := bleve.NewTermQuery(searchTerm)
	termExact.SetField(titleExactField)
	termExact.SetBoost(boostTitleExact)
	boolQuery.AddShould(termExact)

	matchPhrase := bleve.NewMatchPhraseQuery(searchTerm)
	matchPhrase.SetField(titleField)
	matchPhrase.SetBoost(boostTitlePhrase)
	boolQuery.AddShould(matchPhrase)

	// "star wa" matches "Star Wars"
	prefixFull := bleve.NewPrefixQuery(searchTerm)
	prefixFull.SetField(titleField)
	prefixFull.SetBoost(boostTitlePrefix)
	boolQuery.AddShould(prefixFull)

	tokens := strings.Fields(searchTerm)
	if len(tokens) > 0 {
		prefixFirst := bleve.NewPrefixQuery(tokens[0])
		prefixFirst.SetField(titleField)
		prefixFirst.SetBoost(boostTitleTokenPrefix)
		boolQuery.AddShould(prefixFirst)
	}

	genreMatch := bleve.NewMatchQuery(searchTerm)
	genreMatch.SetField(genresField)
	genreMatch.SetBoost(boostGenre)
	boolQuery.AddShould(genreMatch)

	for _, tok := range tokens {
		fuzz := 1
		if len(tok) >= 6 {
			fuzz = 2
		}
		for _, f := range []string{titleField, descriptionField} {
			boost := boostOtherFields
			if f == titleField {
				boost = boostTitleField
			}
			fq := bleve.NewFuzzyQuery(tok)
			fq.SetField(f)
			fq.SetFuzziness(fuzz)
			fq.SetBoost(boost)
			boolQuery.AddShould(fq)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(f)
			pq.SetBoost(boost)
			boolQuery.AddShould(pq)
		}
	}
	boolQuery.SetMinShould(1)

	req := bleve.NewSearchRequestOptions(boolQuery, size, 0, false)
	req.Fields = []string{idField}
	req.SortBy([]string{"-_score", idField})

	b.mu.RLock()
	res, err := b.index.SearchInContext(ctx, req)
	b.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	foundIDs := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		foundIDs = append(foundIDs, h.ID)
	}
	b.log.Debug().Str("term", searchTerm).Int("hits", len(foundIDs)).Msg("search")
	return foundIDs, nil
}

// Close closes the underlying index.
func (b *Search) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.index.Close()
}
