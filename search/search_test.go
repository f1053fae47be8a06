package search

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/erikbos/cinetrack/database/model"
)

var testMovies = []model.Movie{
	{ID: "alien", Title: "Alien", Description: "The crew of a space tug encounters a deadly creature.",
		Genres: []model.Genre{{Name: "Horror"}, {Name: "Sci-Fi"}}, Year: 1979},
	{ID: "aliens", Title: "Aliens", Description: "Marines return to the moon where the creature was found.",
		Genres: []model.Genre{{Name: "Action"}, {Name: "Sci-Fi"}}, Year: 1986},
	{ID: "godfather", Title: "The Godfather", Description: "The aging patriarch of a mafia dynasty hands over control.",
		Genres: []model.Genre{{Name: "Crime"}, {Name: "Drama"}}, Year: 1972},
}

func newTestIndex(t *testing.T) *Search {
	t.Helper()
	s, err := New(zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Rebuild(context.Background(), testMovies); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func contains(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

func TestSearch(t *testing.T) {
	s := newTestIndex(t)
	ctx := context.Background()

	tests := []struct {
		term     string
		want     string
		wantNot  string
		wantHead bool
	}{
		{term: "alien", want: "alien", wantHead: true},
		{term: "Godfather", want: "godfather", wantNot: "alien"},
		{term: "godfathr", want: "godfather"},
		{term: "mafia", want: "godfather", wantNot: "aliens"},
		{term: "crime", want: "godfather"},
		{term: "marines", want: "aliens"},
	}
	for _, tt := range tests {
		ids, err := s.Search(ctx, tt.term, 15)
		if err != nil {
			t.Fatalf("Search(%q): %v", tt.term, err)
		}
		if !contains(ids, tt.want) {
			t.Errorf("Search(%q) = %v, want %s", tt.term, ids, tt.want)
		}
		if tt.wantHead && (len(ids) == 0 || ids[0] != tt.want) {
			t.Errorf("Search(%q) = %v, want %s first", tt.term, ids, tt.want)
		}
		if tt.wantNot != "" && contains(ids, tt.wantNot) {
			t.Errorf("Search(%q) = %v, did not want %s", tt.term, ids, tt.wantNot)
		}
	}
}

func TestSearchLimitAndEmpty(t *testing.T) {
	s := newTestIndex(t)
	ctx := context.Background()

	ids, err := s.Search(ctx, "sci-fi", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 {
		t.Errorf("Search with size 1 returned %d ids", len(ids))
	}
	if ids, _ := s.Search(ctx, "   ", 10); len(ids) != 0 {
		t.Errorf("empty search returned %v", ids)
	}
}

func TestIndexUpdatesMovie(t *testing.T) {
	s := newTestIndex(t)
	ctx := context.Background()

	heat := &model.Movie{ID: "heat", Title: "Heat", Description: "A group of professional bank robbers."}
	if err := s.Index(ctx, heat); err != nil {
		t.Fatal(err)
	}
	if ids, _ := s.Search(ctx, "robbers", 10); !contains(ids, "heat") {
		t.Errorf("indexed movie not found: %v", ids)
	}
	heat.Description = "A thief plans one last score."
	if err := s.Index(ctx, heat); err != nil {
		t.Fatal(err)
	}
	if ids, _ := s.Search(ctx, "robbers", 10); contains(ids, "heat") {
		t.Errorf("movie still found on old description: %v", ids)
	}
	if ids, _ := s.Search(ctx, "thief", 10); !contains(ids, "heat") {
		t.Errorf("updated movie not found: %v", ids)
	}
}

func TestRebuildReplacesContents(t *testing.T) {
	s := newTestIndex(t)
	ctx := context.Background()
	if err := s.Rebuild(ctx, testMovies[2:]); err != nil {
		t.Fatal(err)
	}
	if ids, _ := s.Search(ctx, "alien", 10); contains(ids, "alien") {
		t.Errorf("movie from previous build still found: %v", ids)
	}
}
