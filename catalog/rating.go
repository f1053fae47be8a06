package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/erikbos/cinetrack/database/model"
)

var ErrInvalidRating = errors.New("invalid rating")

var validate = validator.New(validator.WithRequiredStructEnabled())

// RatingRequest is a score with optional review submitted by a user.
type RatingRequest struct {
	Score  int    `json:"score" validate:"min=1,max=5"`
	Review string `json:"review" validate:"max=500"`
}

// RatingResult is the stored rating and the updated statistics of the movie.
type RatingResult struct {
	Rating model.Rating
	// Created is false if an existing rating was overwritten.
	Created bool
	Average float64
	Count   int
}

// Rate stores the rating of a movie by a user, overwriting an earlier rating.
func (s *Service) Rate(ctx context.Context, userID, movieID string, req RatingRequest) (*RatingResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRating, validationMessage(err))
	}
	if _, err := s.store.GetMovie(ctx, movieID); err != nil {
		return nil, err
	}
	rating := &model.Rating{
		UserID:  userID,
		MovieID: movieID,
		Score:   req.Score,
		Review:  req.Review,
	}
	created, err := s.store.UpsertRating(ctx, rating)
	if err != nil {
		return nil, fmt.Errorf("cannot store rating: %w", err)
	}
	if created {
		s.log.Info().Str("user", userID).Str("movie", movieID).Int("score", req.Score).Msg("rating created")
	} else {
		s.log.Info().Str("user", userID).Str("movie", movieID).Int("score", req.Score).Msg("rating updated")
	}
	s.metrics.RatingRecorded(created)

	ratings, err := s.store.ListRatings(ctx, movieID)
	if err != nil {
		return nil, err
	}
	return &RatingResult{
		Rating:  *rating,
		Created: created,
		Average: averageScore(ratings),
		Count:   len(ratings),
	}, nil
}

// validationMessage returns the first failed field and rule.
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return fmt.Sprintf("%s failed on %s", errs[0].Field(), errs[0].Tag())
	}
	return err.Error()
}
