package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/erikbos/cinetrack/catalog"
	"github.com/erikbos/cinetrack/database/model"
	"github.com/erikbos/cinetrack/poster"
)

// HTTPError represents a structured HTTP error response.
type HTTPError struct {
	Status    int                 `json:"status"`
	Type      string              `json:"type,omitempty"`
	Title     string              `json:"title,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
}

// statusTypeMap maps HTTP status codes to RFC 9110 types.
var statusTypeMap = map[int]string{
	400: "https://tools.ietf.org/html/rfc9110#section-15.5.1",  // Bad Request
	401: "https://tools.ietf.org/html/rfc9110#section-15.5.2",  // Unauthorized
	403: "https://tools.ietf.org/html/rfc9110#section-15.5.3",  // Forbidden
	404: "https://tools.ietf.org/html/rfc9110#section-15.5.5",  // Not Found
	405: "https://tools.ietf.org/html/rfc9110#section-15.5.6",  // Method Not Allowed
	409: "https://tools.ietf.org/html/rfc9110#section-15.5.10", // Conflict
	413: "https://tools.ietf.org/html/rfc9110#section-15.5.14", // Content Too Large
	415: "https://tools.ietf.org/html/rfc9110#section-15.5.16", // Unsupported Media Type
	500: "https://tools.ietf.org/html/rfc9110#section-15.6.1",  // Internal Server Error
	503: "https://tools.ietf.org/html/rfc9110#section-15.6.4",  // Service Unavailable
}

// maxBodySize limits request bodies.
const maxBodySize = 64 << 10

var validate = validator.New(validator.WithRequiredStructEnabled())

// apierror writes a structured error response.
func apierror(w http.ResponseWriter, r *http.Request, msg string, status int) {
	apierrorFields(w, r, msg, status, nil)
}

func apierrorFields(w http.ResponseWriter, r *http.Request, msg string, status int, fields map[string][]string) {
	response := HTTPError{
		Status:    status,
		Title:     msg,
		Errors:    fields,
		RequestID: requestID(r),
	}
	if typeURL, ok := statusTypeMap[status]; ok {
		response.Type = typeURL
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// serveError maps an error from the catalog or store to a response.
func (a *API) serveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrMovieNotFound):
		apierror(w, r, "movie not found", http.StatusNotFound)
	case errors.Is(err, model.ErrUserNotFound):
		apierror(w, r, "user not found", http.StatusNotFound)
	case errors.Is(err, model.ErrNotFound), errors.Is(err, poster.ErrNotFound):
		apierror(w, r, "not found", http.StatusNotFound)
	case errors.Is(err, poster.ErrUnsupportedType):
		apierror(w, r, err.Error(), http.StatusUnsupportedMediaType)
	case errors.Is(err, catalog.ErrInvalidRating), errors.Is(err, catalog.ErrSearchTermTooShort):
		apierror(w, r, err.Error(), http.StatusBadRequest)
	case errors.Is(err, catalog.ErrNoSearchIndex):
		apierror(w, r, err.Error(), http.StatusServiceUnavailable)
	default:
		a.log.Error().Err(err).Str("request_id", requestID(r)).Str("path", r.URL.Path).Msg("request failed")
		apierror(w, r, "internal server error", http.StatusInternalServerError)
	}
}

// serveJSON writes obj as JSON with status 200.
func serveJSON(obj any, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(obj)
}

// decodeJSON reads a JSON request body into dst and validates it.
// It writes the error response itself and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		apierror(w, r, "invalid request body", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			apierror(w, r, "invalid request body", http.StatusBadRequest)
			return false
		}
		fields := make(map[string][]string)
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], fmt.Sprintf("failed on %s", fe.Tag()))
		}
		apierrorFields(w, r, "validation failed", http.StatusBadRequest, fields)
		return false
	}
	return true
}
