package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/erikbos/cinetrack/database/model"
)

func TestRateUpsertKeepsOneRow(t *testing.T) {
	store := newMemStore()
	store.addMovie("m1", "Movie", 3600, day(1))
	s := newTestService(t, store)
	ctx := context.Background()

	first, err := s.Rate(ctx, "u1", "m1", RatingRequest{Score: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !first.Created || first.Average != 3 || first.Count != 1 {
		t.Errorf("first rating = %+v", first)
	}
	second, err := s.Rate(ctx, "u1", "m1", RatingRequest{Score: 5, Review: "better the second time"})
	if err != nil {
		t.Fatal(err)
	}
	if second.Created {
		t.Error("second rating reported as created")
	}
	if second.Count != 1 || second.Average != 5 {
		t.Errorf("second rating = %+v, want one rating of 5", second)
	}
	if len(store.ratings) != 1 || store.ratings[[2]string{"u1", "m1"}].Score != 5 {
		t.Errorf("stored ratings = %v", store.ratings)
	}

	third, err := s.Rate(ctx, "u1", "m1", RatingRequest{Score: 4})
	if err != nil {
		t.Fatal(err)
	}
	if third.Rating.Score != 4 || third.Rating.Review != "better the second time" {
		t.Errorf("score only rating = %+v, want the earlier review kept", third.Rating)
	}
}

func TestRateAverage(t *testing.T) {
	store := newMemStore()
	store.addMovie("m1", "Movie", 3600, day(1))
	store.rate("u2", "m1", 3)
	s := newTestService(t, store)

	r, err := s.Rate(context.Background(), "u1", "m1", RatingRequest{Score: 5})
	if err != nil {
		t.Fatal(err)
	}
	if r.Average != 4.0 || r.Count != 2 {
		t.Errorf("result = %+v, want average 4.0 of 2", r)
	}
}

func TestRateInvalid(t *testing.T) {
	store := newMemStore()
	store.addMovie("m1", "Movie", 3600, day(1))
	s := newTestService(t, store)

	tests := []RatingRequest{
		{Score: 0},
		{Score: 6},
		{Score: -1},
		{Score: 3, Review: strings.Repeat("x", 501)},
	}
	for _, req := range tests {
		if _, err := s.Rate(context.Background(), "u1", "m1", req); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("Rate(%d, %d chars) error = %v, want ErrInvalidRating", req.Score, len(req.Review), err)
		}
	}
	if len(store.ratings) != 0 {
		t.Errorf("invalid ratings were stored: %v", store.ratings)
	}
}

func TestRateUnknownMovie(t *testing.T) {
	s := newTestService(t, newMemStore())
	if _, err := s.Rate(context.Background(), "u1", "nope", RatingRequest{Score: 4}); !errors.Is(err, model.ErrMovieNotFound) {
		t.Errorf("Rate() error = %v, want ErrMovieNotFound", err)
	}
}
