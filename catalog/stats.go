package catalog

import (
	"context"
	"math"
	"sort"

	"github.com/erikbos/cinetrack/database/model"
)

// GenreCount is the number of occurrences of a genre.
type GenreCount struct {
	Genre model.Genre
	Count int
}

// AverageRating returns the mean score of a movie rounded to one decimal, 0 without ratings.
func (s *Service) AverageRating(ctx context.Context, movieID string) (float64, error) {
	ratings, err := s.store.ListRatings(ctx, movieID)
	if err != nil {
		return 0, err
	}
	return averageScore(ratings), nil
}

// RatingCount returns the number of ratings of a movie.
func (s *Service) RatingCount(ctx context.Context, movieID string) (int, error) {
	ratings, err := s.store.ListRatings(ctx, movieID)
	if err != nil {
		return 0, err
	}
	return len(ratings), nil
}

// GenreViewCounts returns per genre the number of watch history rows of the user
// whose movie carries that genre.
func (s *Service) GenreViewCounts(ctx context.Context, userID string) (map[model.Genre]int, error) {
	history, err := s.store.ListWatchHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	_, movies, err := s.moviesByID(ctx)
	if err != nil {
		return nil, err
	}
	return genreViewCounts(history, movies), nil
}

func genreViewCounts(history []model.WatchHistory, movies map[string]*model.Movie) map[model.Genre]int {
	counts := make(map[model.Genre]int)
	for _, h := range history {
		m, ok := movies[h.MovieID]
		if !ok {
			continue
		}
		for _, g := range m.Genres {
			counts[g]++
		}
	}
	return counts
}

// genreViewTotals sums per genre the view counts of the movies carrying it.
func genreViewTotals(views map[string]int, movies map[string]*model.Movie) map[model.Genre]int {
	totals := make(map[model.Genre]int)
	for id, count := range views {
		m, ok := movies[id]
		if !ok {
			continue
		}
		for _, g := range m.Genres {
			totals[g] += count
		}
	}
	return totals
}

// genreRatingAverages returns per genre the mean score of ratings on movies
// carrying it. Genres without ratings are absent.
func genreRatingAverages(ratings []model.Rating, movies map[string]*model.Movie) map[model.Genre]float64 {
	sums := make(map[model.Genre]int)
	counts := make(map[model.Genre]int)
	for _, r := range ratings {
		m, ok := movies[r.MovieID]
		if !ok {
			continue
		}
		for _, g := range m.Genres {
			sums[g] += r.Score
			counts[g]++
		}
	}
	averages := make(map[model.Genre]float64, len(sums))
	for g, sum := range sums {
		averages[g] = float64(sum) / float64(counts[g])
	}
	return averages
}

// sortGenreCounts orders by count descending, then genre name.
func sortGenreCounts(counts map[model.Genre]int) []GenreCount {
	result := make([]GenreCount, 0, len(counts))
	for g, c := range counts {
		result = append(result, GenreCount{Genre: g, Count: c})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Genre.Name < result[j].Genre.Name
	})
	return result
}

func averageScore(ratings []model.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Score
	}
	return roundOneDecimal(float64(sum) / float64(len(ratings)))
}

// percentWatched returns position as percentage of duration, 0 if duration is not positive.
func percentWatched(position, duration int) float64 {
	if duration <= 0 {
		return 0
	}
	return float64(position) * 100 / float64(duration)
}

func roundOneDecimal(f float64) float64 {
	return math.Round(f*10) / 10
}
