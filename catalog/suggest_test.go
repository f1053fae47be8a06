package catalog

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/erikbos/cinetrack/metrics"
)

func TestSuggestEmptyCatalog(t *testing.T) {
	s := newTestService(t, newMemStore())
	if m := s.Suggest(context.Background(), "u1"); m != nil {
		t.Errorf("Suggest() = %s, want nil", m.ID)
	}
}

func TestSuggestNewUserGetsBestRated(t *testing.T) {
	store := newMemStore()
	store.addMovie("m1", "Old favourite", 3600, day(10), drama)
	store.addMovie("m2", "Newest", 3600, day(1), comedy)
	store.addMovie("m3", "Well rated", 3600, day(5), action)
	store.rate("x", "m1", 3)
	store.rate("x", "m3", 5)
	s := newTestService(t, store)

	m := s.Suggest(context.Background(), "new-user")
	if m == nil {
		t.Fatal("Suggest() = nil, want a movie")
	}
	if m.ID != "m3" {
		t.Errorf("Suggest() = %s, want m3", m.ID)
	}
}

func TestSuggestPrefersFavoriteGenres(t *testing.T) {
	store := newMemStore()
	store.addMovie("fav", "Liked", 3600, day(10), horror)
	store.addMovie("h1", "Horror one", 3600, day(5), horror)
	store.addMovie("h2", "Horror two", 3600, day(3), horror, comedy)
	store.addMovie("c1", "Top comedy", 3600, day(2), comedy)
	store.rate("x", "c1", 5)
	store.rate("x", "h1", 4)
	store.rate("y", "h2", 4)
	store.rate("z", "h2", 4)
	store.favorite("u1", "fav", day(1))
	s := newTestService(t, store)

	// h1 and h2 have equal average, h2 has more ratings
	m := s.Suggest(context.Background(), "u1")
	if m == nil || m.ID != "h2" {
		t.Errorf("Suggest() = %v, want h2", m)
	}
}

func TestSuggestUsesWatchedGenresWithoutFavorites(t *testing.T) {
	store := newMemStore()
	store.addMovie("w", "Watched", 3600, day(10), drama)
	store.addMovie("d1", "Drama older", 3600, day(5), drama)
	store.addMovie("d2", "Drama newer", 3600, day(3), drama)
	store.addMovie("a1", "Action", 3600, day(1), action)
	store.rate("x", "a1", 5)
	store.watch("u1", "w", 100, false, day(1))
	s := newTestService(t, store)

	// unrated drama movies tie on rating, newest wins
	m := s.Suggest(context.Background(), "u1")
	if m == nil || m.ID != "d2" {
		t.Errorf("Suggest() = %v, want d2", m)
	}
}

func TestSuggestFallsBackToUnseen(t *testing.T) {
	store := newMemStore()
	store.addMovie("h1", "Horror", 3600, day(5), horror)
	store.addMovie("c1", "Comedy", 3600, day(4), comedy)
	store.addMovie("c2", "Comedy rated", 3600, day(6), comedy)
	store.rate("x", "c2", 2)
	store.favorite("u1", "h1", day(1))
	m := metrics.New()
	s := New(&Options{Store: store, Metrics: m, Logger: zerolog.Nop()})

	movie := s.Suggest(context.Background(), "u1")
	if movie == nil || movie.ID != "c2" {
		t.Errorf("Suggest() = %v, want c2", movie)
	}
	if got := testutil.ToFloat64(m.Suggestions.WithLabelValues(StrategyPopular)); got != 1 {
		t.Errorf("popular suggestions = %v, want 1", got)
	}
}

func TestSuggestNeverReturnsSeenMovie(t *testing.T) {
	store := newMemStore()
	for i, g := range []string{"a", "b", "c", "d", "e", "f"} {
		store.addMovie(g, g, 3600, day(i), action)
	}
	store.favorite("u1", "a", day(1))
	store.watch("u1", "b", 10, false, day(1))
	store.watch("u1", "c", 3600, true, day(1))
	s := newTestService(t, store)
	seen := map[string]bool{"a": true, "b": true, "c": true}

	for i := 0; i < 20; i++ {
		m := s.Suggest(context.Background(), "u1")
		if m == nil {
			t.Fatal("Suggest() = nil")
		}
		if seen[m.ID] {
			t.Fatalf("Suggest() returned seen movie %s", m.ID)
		}
	}
}

func TestSuggestAllSeenReturnsRandom(t *testing.T) {
	store := newMemStore()
	store.addMovie("a", "A", 3600, day(1), action)
	store.addMovie("b", "B", 3600, day(2), comedy)
	store.favorite("u1", "a", day(1))
	store.watch("u1", "b", 3600, true, day(1))
	m := metrics.New()
	s := New(&Options{Store: store, Metrics: m, Logger: zerolog.Nop()})

	movie := s.Suggest(context.Background(), "u1")
	if movie == nil {
		t.Fatal("Suggest() = nil, want a random movie")
	}
	if movie.ID != "a" && movie.ID != "b" {
		t.Errorf("Suggest() = %s, want a catalog movie", movie.ID)
	}
	if got := testutil.ToFloat64(m.Suggestions.WithLabelValues(StrategyRandom)); got != 1 {
		t.Errorf("random suggestions = %v, want 1", got)
	}
}

func TestSuggestFailsSoft(t *testing.T) {
	store := newMemStore()
	store.addMovie("a", "A", 3600, day(1), action)
	store.failMovies = 1
	s := newTestService(t, store)

	m := s.Suggest(context.Background(), "u1")
	if m == nil || m.ID != "a" {
		t.Errorf("Suggest() = %v, want fallback to a", m)
	}
}

func TestSuggestFailsSoftToNil(t *testing.T) {
	store := newMemStore()
	store.addMovie("a", "A", 3600, day(1), action)
	store.failMovies = 2
	s := newTestService(t, store)

	if m := s.Suggest(context.Background(), "u1"); m != nil {
		t.Errorf("Suggest() = %v, want nil", m)
	}
}
