// Package muxnormalizer provides middleware that normalizes request paths and query
// parameters so clients with sloppy URLs still hit the registered routes.
//
// E.g. //API/Movies/?Order=title_asc will be normalized to /api/movies?order=title_asc
package muxnormalizer

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
)

type Normalizer struct {
	bySegmentCount map[int][]routeTemplate
}

type routeTemplate struct {
	staticPos map[int]string
}

// New builds a request normalizer from all routes registered on r.
func New(r *mux.Router) (*Normalizer, error) {
	n := &Normalizer{
		bySegmentCount: make(map[int][]routeTemplate),
	}

	// Build route casing index from all registered routes
	err := r.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		template, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		segments, staticPos := splitTemplate(template)
		n.bySegmentCount[segments] = append(n.bySegmentCount[segments], routeTemplate{staticPos: staticPos})
		return nil
	})
	return n, err
}

// splitTemplate returns the number of segments of a route template and
// its static segments by position.
func splitTemplate(template string) (int, map[int]string) {
	staticPos := make(map[int]string)
	segIndex := 0
	for _, part := range strings.Split(template, "/") {
		if part == "" {
			continue
		}
		// Skip path parameters
		if !strings.HasPrefix(part, "{") || !strings.HasSuffix(part, "}") {
			staticPos[segIndex] = part
		}
		segIndex++
	}
	return segIndex, staticPos
}

// Middleware returns an HTTP middleware that normalizes request paths and query parameters.
func (n *Normalizer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = n.Path(r.URL.Path)
		if len(r.URL.RawQuery) > 0 {
			r.URL.RawQuery = normalizeQueryParameters(r.URL.RawQuery)
		}
		next.ServeHTTP(w, r)
	})
}

// Path removes duplicate and trailing slashes and corrects the casing of
// static segments of a path matching a registered route.
func (n *Normalizer) Path(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if path != "/" && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return n.normalizePath(path)
}

// normalizePath normalizes the given path using the route templates
func (n *Normalizer) normalizePath(path string) string {
	segments := make([]string, 0, 4)
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			segments = append(segments, p)
		}
	}

	for _, tpl := range n.bySegmentCount[len(segments)] {
		match := true
		modified := false
		newSegments := make([]string, len(segments))
		copy(newSegments, segments)

		for i, seg := range segments {
			canonical, ok := tpl.staticPos[i]
			if !ok {
				continue
			}
			if !strings.EqualFold(seg, canonical) {
				match = false
				break
			}
			if seg != canonical {
				newSegments[i] = canonical
				modified = true
			}
		}
		if !match {
			continue
		}
		if modified {
			path = "/" + strings.Join(newSegments, "/")
		}
		break
	}
	return path
}

// normalizeQueryParameters lowercases the names of known query parameters.
func normalizeQueryParameters(rawQuery string) string {
	queryparameters, err := url.ParseQuery(rawQuery)
	if err != nil {
		return rawQuery
	}
	newValues := url.Values{}
	for name, values := range queryparameters {
		if canonical, ok := queryParameters[strings.ToLower(name)]; ok {
			name = canonical
		}
		for _, v := range values {
			newValues.Add(name, v)
		}
	}
	return newValues.Encode()
}

// These are the query parameters we rename
var queryParameters = map[string]string{
	"q":     "q",
	"genre": "genre",
	"order": "order",
	"w":     "w",
	"h":     "h",
}
