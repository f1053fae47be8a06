package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/erikbos/cinetrack/database/model"
)

func TestToggleFavorite(t *testing.T) {
	store := newMemStore()
	store.addMovie("m1", "One", 3600, day(1))
	store.addMovie("m2", "Two", 3600, day(2))
	store.favorite("u1", "m2", day(5))
	s := newTestService(t, store)
	ctx := context.Background()

	state, err := s.ToggleFavorite(ctx, "u1", "m1")
	if err != nil {
		t.Fatal(err)
	}
	if !state.IsFavorite || state.Remaining != 2 {
		t.Errorf("after add = %+v, want favorite with 2 remaining", state)
	}
	if f := store.favorites[[2]string{"u1", "m1"}]; !f.Created.Equal(testNow) {
		t.Errorf("favorite created = %v, want %v", f.Created, testNow)
	}

	state, err = s.ToggleFavorite(ctx, "u1", "m1")
	if err != nil {
		t.Fatal(err)
	}
	if state.IsFavorite || state.Remaining != 1 {
		t.Errorf("after remove = %+v, want not favorite with 1 remaining", state)
	}

	if _, err := s.ToggleFavorite(ctx, "u1", "ghost"); !errors.Is(err, model.ErrMovieNotFound) {
		t.Errorf("ToggleFavorite(unknown) error = %v, want ErrMovieNotFound", err)
	}
}

func TestMovieDetail(t *testing.T) {
	store := newMemStore()
	store.addMovie("m", "Main", 3600, day(50), action, drama, comedy)
	for i := 0; i < 10; i++ {
		store.addMovie(fmt.Sprintf("a%d", i), "one genre", 3600, day(i), action)
	}
	store.addMovie("two", "two genres", 3600, day(40), action, drama)
	store.addMovie("three", "three genres", 3600, day(45), action, drama, comedy)
	store.addMovie("none", "unrelated", 3600, day(0), horror)
	store.favorite("u1", "m", day(1))
	store.watch("u1", "m", 1800, false, day(1))
	store.rate("u1", "m", 4)
	store.rate("u2", "m", 5)
	s := newTestService(t, store)

	d, err := s.MovieDetail(context.Background(), "u1", "m")
	if err != nil {
		t.Fatal(err)
	}
	if !d.IsFavorite || d.Progress == nil || d.Progress.Percent != 50 || d.Rating == nil || d.Rating.Score != 4 {
		t.Errorf("user state = favorite %v progress %v rating %v", d.IsFavorite, d.Progress, d.Rating)
	}
	if d.Average != 4.5 || d.RatingCount != 2 {
		t.Errorf("rating stats = %v/%d, want 4.5/2", d.Average, d.RatingCount)
	}
	if len(d.Related) != 8 {
		t.Fatalf("related = %d movies, want 8", len(d.Related))
	}
	if d.Related[0].ID != "three" || d.Related[1].ID != "two" || d.Related[2].ID != "a0" {
		t.Errorf("related order = %s, %s, %s", d.Related[0].ID, d.Related[1].ID, d.Related[2].ID)
	}
	for _, m := range d.Related {
		if m.ID == "m" || m.ID == "none" {
			t.Errorf("related contains %s", m.ID)
		}
	}

	anon, err := s.MovieDetail(context.Background(), "", "m")
	if err != nil {
		t.Fatal(err)
	}
	if anon.IsFavorite || anon.Progress != nil || anon.Rating != nil {
		t.Errorf("anonymous detail has user state: %+v", anon)
	}
}

func TestCatalogByGenre(t *testing.T) {
	store := newMemStore()
	store.addMovie("m1", "One", 3600, day(1), drama, action)
	store.addMovie("m2", "Two", 3600, day(2), drama)
	store.genres = append(store.genres, horror)
	s := newTestService(t, store)

	shelves, err := s.CatalogByGenre(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(shelves) != 2 {
		t.Fatalf("shelves = %d, want 2 (empty genre left out)", len(shelves))
	}
	if shelves[0].Genre != action || len(shelves[0].Movies) != 1 {
		t.Errorf("first shelf = %v", shelves[0])
	}
	if shelves[1].Genre != drama || len(shelves[1].Movies) != 2 {
		t.Errorf("second shelf = %v", shelves[1])
	}
}

func TestFeatured(t *testing.T) {
	store := newMemStore()
	for i := 0; i < 8; i++ {
		store.addMovie(fmt.Sprintf("m%d", i), "movie", 3600, day(i))
	}
	store.rate("u1", "m7", 5)
	store.rate("u1", "m5", 3)
	s := newTestService(t, store)

	featured, err := s.Featured(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"m7", "m5", "m0", "m1", "m2", "m3"}
	if len(featured) != len(want) {
		t.Fatalf("featured = %d movies, want %d", len(featured), len(want))
	}
	for i, id := range want {
		if featured[i].ID != id {
			t.Errorf("featured[%d] = %s, want %s", i, featured[i].ID, id)
		}
	}
}

func TestHome(t *testing.T) {
	store := newMemStore()
	store.addMovie("d1", "Drama 1", 1000, day(1), drama)
	store.addMovie("d2", "Drama 2", 1000, day(2), drama)
	store.addMovie("c1", "Comedy 1", 1000, day(3), comedy)
	store.addMovie("h1", "Horror 1", 1000, day(4), horror)
	store.watch("u1", "d1", 500, false, day(1))
	store.watch("u1", "c1", 1000, true, day(2))
	store.watch("u1", "d2", 100, false, day(3))
	store.watch("u2", "h1", 100, false, day(1))
	store.watch("u3", "h1", 100, false, day(1))
	store.watch("u4", "h1", 100, false, day(1))
	s := newTestService(t, store)

	h, err := s.Home(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if h.Suggestion == nil || h.Suggestion.ID != "h1" {
		t.Errorf("Suggestion = %v, want h1", h.Suggestion)
	}
	if len(h.ContinueWatching) != 2 || h.ContinueWatching[0].Movie.ID != "d1" {
		t.Errorf("ContinueWatching = %v", h.ContinueWatching)
	}
	if len(h.FavoriteGenres) != 2 || h.FavoriteGenres[0].Genre != drama || h.FavoriteGenres[1].Genre != comedy {
		t.Errorf("FavoriteGenres = %v", h.FavoriteGenres)
	}
	if len(h.MostViewed) != 4 || h.MostViewed[0].ID != "h1" {
		t.Errorf("MostViewed = %v", h.MostViewed)
	}
	if h.PopularGenre == nil || h.PopularGenre.Genre != horror {
		t.Errorf("PopularGenre = %v, want Horror", h.PopularGenre)
	}
}

func TestHomeFavoriteGenresTieOnRating(t *testing.T) {
	store := newMemStore()
	store.addMovie("c1", "Comedy 1", 1000, day(1), comedy)
	store.addMovie("d1", "Drama 1", 1000, day(2), drama)
	store.addMovie("h1", "Horror 1", 1000, day(3), horror)
	store.watch("u1", "c1", 1000, true, day(1))
	store.watch("u1", "d1", 1000, true, day(2))
	store.watch("u1", "h1", 1000, true, day(3))
	store.rate("u1", "c1", 2)
	store.rate("u1", "h1", 4)
	store.rate("u2", "c1", 5)
	s := newTestService(t, store)

	h, err := s.Home(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	// one view each, the user's scores decide and drama is unrated
	if len(h.FavoriteGenres) != 2 || h.FavoriteGenres[0].Genre != horror || h.FavoriteGenres[1].Genre != comedy {
		t.Errorf("FavoriteGenres = %v, want Horror then Comedy", h.FavoriteGenres)
	}
}

func TestSearch(t *testing.T) {
	store := newMemStore()
	store.addMovie("m1", "Alien", 3600, day(1))
	store.addMovie("m2", "Aliens", 3600, day(2))
	index := &fakeIndex{ids: []string{"m2", "deleted", "m1"}}
	s := New(&Options{Store: store, Index: index, Logger: zerolog.Nop()})
	ctx := context.Background()

	movies, err := s.Search(ctx, "  alien ")
	if err != nil {
		t.Fatal(err)
	}
	if len(movies) != 2 || movies[0].ID != "m2" || movies[1].ID != "m1" {
		t.Errorf("Search() = %v", movies)
	}
	if index.terms[0] != "alien" {
		t.Errorf("index searched for %q, want trimmed term", index.terms[0])
	}

	for _, term := range []string{"", "a", "  b  "} {
		if _, err := s.Search(ctx, term); !errors.Is(err, ErrSearchTermTooShort) {
			t.Errorf("Search(%q) error = %v, want ErrSearchTermTooShort", term, err)
		}
	}

	noIndex := newTestService(t, store)
	if _, err := noIndex.Search(ctx, "alien"); !errors.Is(err, ErrNoSearchIndex) {
		t.Errorf("Search() without index error = %v", err)
	}
}
