package catalogfile

import (
	"slices"
	"strings"
)

// genreMap maps lowercased genre spellings to the stored genre name.
var genreMap = map[string]string{
	"absurdist":       "Absurdist",
	"action":          "Action",
	"adventure":       "Adventure",
	"animated":        "Animation",
	"animation":       "Animation",
	"biography":       "Biography",
	"comedy":          "Comedy",
	"crime":           "Crime",
	"disaster":        "Disaster",
	"docu":            "Documentary",
	"documentary":     "Documentary",
	"drama":           "Drama",
	"family":          "Family",
	"fantasy":         "Fantasy",
	"film noir":       "Film Noir",
	"film-noir":       "Film Noir",
	"foreign":         "Foreign",
	"historical":      "Historical",
	"history":         "History",
	"holiday":         "Holiday",
	"horror":          "Horror",
	"indie":           "Indie",
	"music":           "Music",
	"musical":         "Musical",
	"mystery":         "Mystery",
	"philosophical":   "Philosophical",
	"political":       "Political",
	"romance":         "Romance",
	"romantic comedy": "Romance",
	"satire":          "Satire",
	"scifi":           "Sci-Fi",
	"sci fi":          "Sci-Fi",
	"sci-fi":          "Sci-Fi",
	"science fiction": "Sci-Fi",
	"science-fiction": "Sci-Fi",
	"short":           "Short",
	"sport":           "Sports",
	"sports":          "Sports",
	"sports film":     "Sports",
	"sports-film":     "Sports",
	"surreal":         "Surreal",
	"suspense":        "Suspense",
	"thriller":        "Thriller",
	"war":             "War",
	"western":         "Western",
}

// normalizeGenres trims genre names, maps known spellings to a single name and
// drops duplicates and names shorter than two characters.
func normalizeGenres(genres []string) (res []string) {
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if normalizedGenre, ok := genreMap[strings.ToLower(g)]; ok {
			g = normalizedGenre
		}
		if !slices.Contains(res, g) && len(g) > 1 {
			res = append(res, g)
		}
	}
	return
}

// splitGenres splits genre values holding several names separated by '/' or ','.
func splitGenres(genres []string) []string {
	res := make([]string, 0, len(genres))
	for _, g := range genres {
		res = append(res, strings.FieldsFunc(g, func(r rune) bool {
			return r == '/' || r == ','
		})...)
	}
	return res
}
