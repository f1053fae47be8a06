package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// statusWriter proxies http.ResponseWriter
// and stores the requests status and length.
type statusWriter struct {
	http.ResponseWriter
	status int
	length int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (length int, err error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	length, err = w.ResponseWriter.Write(b)
	w.length += length
	return
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// httpLog calls ServeHTTP with a custom responsewriter that stores the
// requests status and length so we can log it and count it per route.
// Requests carry the X-Request-ID of the client or a generated one.
func (a *API) httpLog(router *mux.Router, handle http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		writer := statusWriter{ResponseWriter: w}
		handle.ServeHTTP(&writer, r)
		if writer.status == 0 {
			writer.status = http.StatusOK
		}
		latency := time.Since(start)

		a.metrics.ObserveRequest(routeTemplate(router, r), r.Method, writer.status, latency)

		var event *zerolog.Event
		switch {
		case writer.status >= 500:
			event = a.log.Error()
		case writer.status >= 400:
			event = a.log.Warn()
		default:
			event = a.log.Info()
		}
		event.Str("request_id", id).
			Str("remote", r.RemoteAddr).
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Str("proto", r.Proto).
			Int("status", writer.status).
			Int("length", writer.length).
			Str("user_agent", r.UserAgent()).
			Dur("latency", latency).
			Msg("request")
	}
}

// routeTemplate returns the path template of the route matching r, so metrics
// are not labeled with movie IDs.
func routeTemplate(router *mux.Router, r *http.Request) string {
	var match mux.RouteMatch
	if router.Match(r, &match) && match.Route != nil {
		if tpl, err := match.Route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// requestID returns the request ID set by httpLog.
func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
